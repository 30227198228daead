package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/pkg/apperrors"
)

func newSeatFixture(t *testing.T) (*SeatService, *fakeExamStore, *fakeSeatStore) {
	t.Helper()

	examStore := newFakeExamStore()
	seatStore := newFakeSeatStore(examStore)
	examService := NewExamService(examStore)
	return NewSeatService(seatStore, examService), examStore, seatStore
}

func registerExam(t *testing.T, svc *SeatService, room string) *models.Exam {
	t.Helper()

	exam, err := svc.examService.Register(context.Background(), dto.RegisterExamRequest{
		Subject:   "高等数学",
		Room:      room,
		StartTime: "09:00",
		EndTime:   "11:00",
		ExamDate:  "2025-06-01",
	})
	if err != nil {
		t.Fatalf("register exam: %v", err)
	}
	return exam
}

func intPtr(n int) *int { return &n }

func TestReconcileInsertOnlyDerivesAvailability(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	proposals := []dto.SeatProposal{
		{SeatNumber: 1, StudentName: "Alice"},
		{SeatNumber: 2, StudentName: "   "},
		{SeatNumber: 3, StudentName: "Bob"},
	}
	if err := svc.Reconcile(ctx, exam, proposals, ModeInsertOnly); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	seats, err := seatStore.ListByExam(ctx, exam.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(seats) != 3 {
		t.Fatalf("got %d seats, want 3", len(seats))
	}

	wantAvailable := map[int]bool{1: false, 2: true, 3: false}
	for _, seat := range seats {
		if seat.Available != wantAvailable[seat.SeatNumber] {
			t.Errorf("seat %d: available=%v, want %v", seat.SeatNumber, seat.Available, wantAvailable[seat.SeatNumber])
		}
	}
	for _, seat := range seats {
		if seat.SeatNumber == 2 && seat.StudentName != "" {
			t.Errorf("blank name not trimmed to empty: %q", seat.StudentName)
		}
	}
}

func TestReconcileInsertOnlyRejectsPersistedDuplicate(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	first := []dto.SeatProposal{
		{SeatNumber: 1, StudentName: "Alice"},
		{SeatNumber: 2, StudentName: ""},
		{SeatNumber: 3, StudentName: "Bob"},
	}
	if err := svc.Reconcile(ctx, exam, first, ModeInsertOnly); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}

	err := svc.Reconcile(ctx, exam, []dto.SeatProposal{{SeatNumber: 1, StudentName: "Carol"}}, ModeInsertOnly)

	var dup *apperrors.DuplicateSeatError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSeatError, got %v", err)
	}
	if dup.SeatNumber != 1 {
		t.Errorf("duplicate seat number: got %d, want 1", dup.SeatNumber)
	}

	// The roster is unchanged by the failed batch.
	seats, _ := seatStore.ListByExam(ctx, exam.ID)
	if len(seats) != 3 {
		t.Fatalf("roster changed: %d seats", len(seats))
	}
	for _, seat := range seats {
		if seat.SeatNumber == 1 && seat.StudentName != "Alice" {
			t.Errorf("seat 1 overwritten: %q", seat.StudentName)
		}
	}
}

func TestReconcileIntraBatchDuplicate(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	err := svc.Reconcile(ctx, exam, []dto.SeatProposal{
		{SeatNumber: 1, StudentName: "Alice"},
		{SeatNumber: 2, StudentName: "Bob"},
		{SeatNumber: 2, StudentName: "Carol"},
	}, ModeInsertOnly)

	var dup *apperrors.DuplicateSeatError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSeatError, got %v", err)
	}
	if dup.SeatNumber != 2 {
		t.Errorf("duplicate seat number: got %d, want 2", dup.SeatNumber)
	}

	if seats, _ := seatStore.ListByExam(ctx, exam.ID); len(seats) != 0 {
		t.Errorf("nothing should be persisted, got %d seats", len(seats))
	}
}

func TestReconcileReplaceClearsRoster(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{
		{SeatNumber: 1, StudentName: "Alice"},
		{SeatNumber: 2, StudentName: "Bob"},
	}, ModeInsertOnly); err != nil {
		t.Fatalf("seed reconcile: %v", err)
	}

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{
		{SeatNumber: 5, StudentName: "Dave"},
	}, ModeReplace); err != nil {
		t.Fatalf("replace reconcile: %v", err)
	}

	seats, _ := seatStore.ListByExam(ctx, exam.ID)
	if len(seats) != 1 || seats[0].SeatNumber != 5 {
		t.Fatalf("expected only seat 5 after replace, got %+v", seats)
	}
}

func TestReconcileUpsertOverwritesInPlace(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{
		{SeatNumber: 1, StudentName: "Alice"},
		{SeatNumber: 2, StudentName: "Bob"},
	}, ModeInsertOnly); err != nil {
		t.Fatalf("seed reconcile: %v", err)
	}

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{
		{SeatNumber: 2, StudentName: ""},
		{SeatNumber: 3, StudentName: "Carol"},
	}, ModeUpsert); err != nil {
		t.Fatalf("upsert reconcile: %v", err)
	}

	seats, _ := seatStore.ListByExam(ctx, exam.ID)
	if len(seats) != 3 {
		t.Fatalf("got %d seats, want 3", len(seats))
	}
	for _, seat := range seats {
		switch seat.SeatNumber {
		case 1:
			if seat.StudentName != "Alice" {
				t.Errorf("seat 1 overwritten: %q", seat.StudentName)
			}
		case 2:
			if seat.StudentName != "" || !seat.Available {
				t.Errorf("seat 2 not vacated: %+v", seat)
			}
		case 3:
			if seat.StudentName != "Carol" || seat.Available {
				t.Errorf("seat 3 wrong: %+v", seat)
			}
		}
	}
}

func TestReconcileValidation(t *testing.T) {
	svc, _, _ := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, nil, ModeInsertOnly); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("empty batch: expected validation error, got %v", err)
	}

	err := svc.Reconcile(ctx, exam, []dto.SeatProposal{{SeatNumber: 0, StudentName: "Alice"}}, ModeInsertOnly)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("zero seat number: expected validation error, got %v", err)
	}
}

func TestReconcileStorageFailureWrapped(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	seatStore.saveErr = errors.New("connection lost")
	err := svc.Reconcile(ctx, exam, []dto.SeatProposal{{SeatNumber: 1, StudentName: "Alice"}}, ModeInsertOnly)
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}

	if seats, _ := seatStore.ListByExam(ctx, exam.ID); len(seats) != 0 {
		t.Errorf("roster changed by failed write: %d seats", len(seats))
	}
}

func TestBatchSaveResolvesSession(t *testing.T) {
	svc, _, _ := newSeatFixture(t)
	ctx := context.Background()
	registerExam(t, svc, "A101")

	exam, saved, err := svc.BatchSave(ctx, dto.BatchSaveRequest{
		Room:      "A101",
		StartTime: "09:00",
		EndTime:   "11:00",
		ExamDate:  "2025-06-01",
		Seats: []dto.BatchSaveSeat{
			{SeatNumber: intPtr(1), StudentName: "Alice"},
			{SeatNumber: intPtr(2)},
		},
	}, ModeInsertOnly)
	if err != nil {
		t.Fatalf("batch save: %v", err)
	}
	if exam.Room != "A101" {
		t.Errorf("room: got %q", exam.Room)
	}
	if saved != 2 {
		t.Errorf("saved: got %d, want 2", saved)
	}
}

func TestBatchSaveMissingSeatNumber(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	_, _, err := svc.BatchSave(ctx, dto.BatchSaveRequest{
		Room:      "A101",
		StartTime: "09:00",
		EndTime:   "11:00",
		ExamDate:  "2025-06-01",
		Seats: []dto.BatchSaveSeat{
			{SeatNumber: intPtr(1), StudentName: "Alice"},
			{SeatNumber: nil, StudentName: "Bob"},
		},
	}, ModeInsertOnly)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error for missing seat number, got %v", err)
	}

	// The whole batch is rejected, nothing is persisted.
	if seats, _ := seatStore.ListByExam(ctx, exam.ID); len(seats) != 0 {
		t.Errorf("roster changed by rejected batch: %d seats", len(seats))
	}
}

func TestBatchSaveUnknownSession(t *testing.T) {
	svc, _, _ := newSeatFixture(t)

	_, _, err := svc.BatchSave(context.Background(), dto.BatchSaveRequest{
		Room:      "Z999",
		StartTime: "09:00",
		EndTime:   "11:00",
		ExamDate:  "2025-06-01",
		Seats:     []dto.BatchSaveSeat{{SeatNumber: intPtr(1)}},
	}, ModeInsertOnly)
	if !errors.Is(err, apperrors.ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}

func TestListSeatsLegacyFallback(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()

	seatStore.legacy = []*models.Seat{
		{ID: 7, SeatNumber: 4, StudentName: "Old Row", Available: false},
	}

	// No registered session and no subject: the fallback cannot run.
	_, err := svc.ListSeats(ctx, selector("D404", "09:00", "11:00", "2024-01-01"), "")
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error without subject, got %v", err)
	}

	seats, err := svc.ListSeats(ctx, selector("D404", "09:00", "11:00", "2024-01-01"), "历史")
	if err != nil {
		t.Fatalf("legacy list: %v", err)
	}
	if len(seats) != 1 || seats[0].StudentName != "Old Row" {
		t.Fatalf("legacy rows not served: %+v", seats)
	}
}

func TestListSeatsPrefersRegisteredSession(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{{SeatNumber: 1, StudentName: "Alice"}}, ModeInsertOnly); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	seatStore.legacy = []*models.Seat{{ID: 99, SeatNumber: 9, StudentName: "Stale"}}

	seats, err := svc.ListSeats(ctx, selector("A101", "09:00", "11:00", "2025-06-01"), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(seats) != 1 || seats[0].StudentName != "Alice" {
		t.Fatalf("expected the session roster, got %+v", seats)
	}
}

func TestPatchByRoom(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{
		{SeatNumber: 1, StudentName: "Alice"},
		{SeatNumber: 2, StudentName: "Bob"},
	}, ModeInsertOnly); err != nil {
		t.Fatalf("seed reconcile: %v", err)
	}

	err := svc.PatchByRoom(ctx, dto.ManualPatchRequest{
		Room: "A101",
		Assignments: map[string]string{
			"1": "Carol",
			"2": "  ", // vacates the seat
		},
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	seats, _ := seatStore.ListByExam(ctx, exam.ID)
	for _, seat := range seats {
		switch seat.SeatNumber {
		case 1:
			if seat.StudentName != "Carol" || seat.Available {
				t.Errorf("seat 1: %+v", seat)
			}
		case 2:
			if seat.StudentName != "" || !seat.Available {
				t.Errorf("seat 2 not vacated: %+v", seat)
			}
		}
	}
}

func TestPatchByRoomMissingSeat(t *testing.T) {
	svc, _, _ := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{{SeatNumber: 1, StudentName: "Alice"}}, ModeInsertOnly); err != nil {
		t.Fatalf("seed reconcile: %v", err)
	}

	err := svc.PatchByRoom(ctx, dto.ManualPatchRequest{
		Room:        "A101",
		Assignments: map[string]string{"8": "Nobody"},
	})
	if !errors.Is(err, apperrors.ErrSeatNotFound) {
		t.Fatalf("expected ErrSeatNotFound, got %v", err)
	}
}

func TestPatchByRoomAmbiguousRoom(t *testing.T) {
	svc, examStore, _ := newSeatFixture(t)
	ctx := context.Background()
	registerExam(t, svc, "A101")

	// A second session in the same room on another day.
	if _, err := svc.examService.Register(ctx, dto.RegisterExamRequest{
		Subject:   "物理",
		Room:      "A101",
		StartTime: "09:00",
		EndTime:   "11:00",
		ExamDate:  "2025-06-02",
	}); err != nil {
		t.Fatalf("second register: %v", err)
	}
	if len(examStore.exams) != 2 {
		t.Fatalf("fixture: expected 2 exams, got %d", len(examStore.exams))
	}

	err := svc.PatchByRoom(ctx, dto.ManualPatchRequest{
		Room:        "A101",
		Assignments: map[string]string{"1": "Carol"},
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error for ambiguous room, got %v", err)
	}
}

func TestPatchByRoomValidation(t *testing.T) {
	svc, _, _ := newSeatFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.ManualPatchRequest
	}{
		{"missing room", dto.ManualPatchRequest{Assignments: map[string]string{"1": "x"}}},
		{"empty assignments", dto.ManualPatchRequest{Room: "A101"}},
		{"non-numeric key", dto.ManualPatchRequest{Room: "A101", Assignments: map[string]string{"first": "x"}}},
		{"non-positive key", dto.ManualPatchRequest{Room: "A101", Assignments: map[string]string{"0": "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.PatchByRoom(ctx, tt.req); !errors.Is(err, apperrors.ErrValidationFailed) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func buildImportFile(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, value := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cellRef, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportCreatesSessionAndReplacesRoster(t *testing.T) {
	svc, _, seatStore := newSeatFixture(t)
	ctx := context.Background()
	sel := selector("E505", "09:00", "11:00", "2025-06-01")

	file := buildImportFile(t, [][]interface{}{
		{"座位号", "学生姓名", "是否可用"},
		{1, "张三", "否"},
		{2, "", "是"},
	})

	result, err := svc.Import(ctx, sel, "高等数学", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 || result.Room != "E505" {
		t.Errorf("result: %+v", result)
	}

	exam, err := svc.examService.Resolve(ctx, sel)
	if err != nil {
		t.Fatalf("resolve imported session: %v", err)
	}
	if exam.Notes != DefaultImportNotes {
		t.Errorf("notes: got %q", exam.Notes)
	}

	// Re-import replaces the roster outright.
	file = buildImportFile(t, [][]interface{}{
		{"座位号", "学生姓名", "是否可用"},
		{fmt.Sprint(7), "李四", ""},
	})
	if _, err := svc.Import(ctx, sel, "高等数学", file); err != nil {
		t.Fatalf("re-import: %v", err)
	}

	seats, _ := seatStore.ListByExam(ctx, exam.ID)
	if len(seats) != 1 || seats[0].SeatNumber != 7 {
		t.Fatalf("roster after re-import: %+v", seats)
	}
}

func TestImportEmptyFile(t *testing.T) {
	svc, _, _ := newSeatFixture(t)

	file := buildImportFile(t, [][]interface{}{
		{"座位号", "学生姓名", "是否可用"},
	})
	_, err := svc.Import(context.Background(), selector("E505", "09:00", "11:00", "2025-06-01"), "高等数学", file)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
}

func TestExportOrdersBySeatNumber(t *testing.T) {
	svc, _, _ := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{
		{SeatNumber: 9, StudentName: "Zoe"},
		{SeatNumber: 1, StudentName: "Alice"},
	}, ModeInsertOnly); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	got, buf, err := svc.Export(ctx, selector("A101", "09:00", "11:00", "2025-06-01"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got.ID != exam.ID {
		t.Errorf("exported exam %d, want %d", got.ID, exam.ID)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	first, _ := f.GetCellValue("座位信息", "A3")
	second, _ := f.GetCellValue("座位信息", "A4")
	if first != "1" || second != "9" {
		t.Errorf("rows not in seat-number order: %q, %q", first, second)
	}
}

func TestExportEmptyRoster(t *testing.T) {
	svc, _, _ := newSeatFixture(t)
	ctx := context.Background()
	registerExam(t, svc, "A101")

	_, _, err := svc.Export(ctx, selector("A101", "09:00", "11:00", "2025-06-01"))
	if !errors.Is(err, apperrors.ErrSeatNotFound) {
		t.Fatalf("expected ErrSeatNotFound for an empty roster, got %v", err)
	}
}

func TestExportCombinedTimeRangeSelector(t *testing.T) {
	svc, _, _ := newSeatFixture(t)
	ctx := context.Background()
	exam := registerExam(t, svc, "A101")

	if err := svc.Reconcile(ctx, exam, []dto.SeatProposal{{SeatNumber: 1, StudentName: "Alice"}}, ModeInsertOnly); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	got, _, err := svc.Export(ctx, dto.SessionSelector{
		Room:      "A101",
		TimeRange: "09:00 ~ 11:00",
		ExamDate:  "2025-06-01",
	})
	if err != nil {
		t.Fatalf("export via combined selector: %v", err)
	}
	if got.ID != exam.ID {
		t.Errorf("resolved exam %d, want %d", got.ID, exam.ID)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		value   string
		want    ReconcileMode
		wantErr bool
	}{
		{"", ModeInsertOnly, false},
		{"insert", ModeInsertOnly, false},
		{"REPLACE", ModeReplace, false},
		{" upsert ", ModeUpsert, false},
		{"merge", ModeInsertOnly, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.value)
		if tt.wantErr {
			if !errors.Is(err, apperrors.ErrValidationFailed) {
				t.Errorf("ParseMode(%q): expected validation error, got %v", tt.value, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.value, got, err, tt.want)
		}
	}
}
