package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/app/repositories"
	"github.com/kayra/examseat/internal/pkg/apperrors"
	"github.com/kayra/examseat/internal/pkg/excel"
)

// ReconcileMode selects how a batch interacts with a session's persisted seats.
type ReconcileMode int

const (
	// ModeInsertOnly rejects the batch if any proposed seat number is
	// already persisted. The default for JSON bulk saves.
	ModeInsertOnly ReconcileMode = iota
	// ModeReplace deletes the session's persisted seats before writing
	// the batch. Used by file import.
	ModeReplace
	// ModeUpsert overwrites persisted seats sharing a proposed seat
	// number in place instead of failing.
	ModeUpsert
)

// ParseMode maps the optional mode query value to a ReconcileMode. An empty
// value keeps the insert-only default.
func ParseMode(value string) (ReconcileMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "insert":
		return ModeInsertOnly, nil
	case "replace":
		return ModeReplace, nil
	case "upsert":
		return ModeUpsert, nil
	default:
		return ModeInsertOnly, apperrors.NewValidationError(fmt.Sprintf(
			"unknown mode %q, expected insert, replace or upsert", value))
	}
}

// seatStore is the persistence surface SeatService needs. It is satisfied by
// *repositories.SeatRepository.
type seatStore interface {
	ListByExam(ctx context.Context, examID int64) ([]*models.Seat, error)
	ListLegacy(ctx context.Context, room, startTime, endTime string, examDate time.Time, subject string) ([]*models.Seat, error)
	SaveBatch(ctx context.Context, examID int64, seats []*models.Seat, clearExisting, upsert bool) error
	GetByRoomAndNumber(ctx context.Context, room string, seatNumber int) (*models.Seat, error)
	UpdateAssignment(ctx context.Context, seatID int64, studentName string, available bool) error
}

// SeatService reconciles proposed seat batches against a session's persisted
// roster and serves the read paths.
type SeatService struct {
	seatRepo    seatStore
	examService *ExamService
}

// NewSeatService creates a new seat service instance
func NewSeatService(seatRepo seatStore, examService *ExamService) *SeatService {
	return &SeatService{
		seatRepo:    seatRepo,
		examService: examService,
	}
}

// Reconcile validates a proposal batch against one session and persists it
// atomically. The pipeline: presence validation, intra-batch uniqueness,
// cross-check against persisted seats per mode, name trimming with the
// availability flag derived from it, then a single-transaction write.
func (s *SeatService) Reconcile(ctx context.Context, exam *models.Exam, proposals []dto.SeatProposal, mode ReconcileMode) error {
	if len(proposals) == 0 {
		return apperrors.NewValidationError("seat batch is empty")
	}

	seen := make(map[int]struct{}, len(proposals))
	seats := make([]*models.Seat, 0, len(proposals))
	for _, p := range proposals {
		if p.SeatNumber <= 0 {
			return apperrors.NewValidationError(fmt.Sprintf(
				"seat number %d is invalid, seat numbers must be positive", p.SeatNumber))
		}
		if _, dup := seen[p.SeatNumber]; dup {
			return apperrors.NewDuplicateSeatError(p.SeatNumber)
		}
		seen[p.SeatNumber] = struct{}{}

		name := strings.TrimSpace(p.StudentName)
		seats = append(seats, &models.Seat{
			ExamID:      exam.ID,
			SeatNumber:  p.SeatNumber,
			StudentName: name,
			Available:   name == "",
		})
	}

	if mode == ModeInsertOnly {
		persisted, err := s.seatRepo.ListByExam(ctx, exam.ID)
		if err != nil {
			return apperrors.NewStorageError("loading persisted seats", err)
		}
		for _, seat := range persisted {
			if _, dup := seen[seat.SeatNumber]; dup {
				return apperrors.NewDuplicateSeatError(seat.SeatNumber)
			}
		}
	}

	err := s.seatRepo.SaveBatch(ctx, exam.ID, seats, mode == ModeReplace, mode == ModeUpsert)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateSeat) {
			return err
		}
		return apperrors.NewStorageError("saving seat batch", err)
	}

	return nil
}

// BatchSave handles the JSON bulk-save payload: the session must already be
// registered, and every entry must carry a seat number.
func (s *SeatService) BatchSave(ctx context.Context, req dto.BatchSaveRequest, mode ReconcileMode) (*models.Exam, int, error) {
	exam, err := s.examService.Resolve(ctx, dto.SessionSelector{
		Room:      req.Room,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		ExamDate:  req.ExamDate,
	})
	if err != nil {
		return nil, 0, err
	}

	proposals := make([]dto.SeatProposal, 0, len(req.Seats))
	for i, seat := range req.Seats {
		if seat.SeatNumber == nil {
			return nil, 0, apperrors.NewValidationError(fmt.Sprintf(
				"seat entry %d has no seat number", i))
		}
		proposals = append(proposals, dto.SeatProposal{
			SeatNumber:  *seat.SeatNumber,
			StudentName: seat.StudentName,
		})
	}

	if err := s.Reconcile(ctx, exam, proposals, mode); err != nil {
		return nil, 0, err
	}

	return exam, len(proposals), nil
}

// Import decodes an uploaded spreadsheet and replaces the session's roster
// with its rows, creating the session when the selector matches nothing.
func (s *SeatService) Import(ctx context.Context, sel dto.SessionSelector, subject string, file io.Reader) (*dto.ImportResult, error) {
	proposals, err := excel.ImportSeats(file)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot read uploaded file: %v", err))
	}
	if len(proposals) == 0 {
		return nil, apperrors.NewValidationError("uploaded file contains no seat rows")
	}

	exam, err := s.examService.ResolveOrCreate(ctx, sel, subject)
	if err != nil {
		return nil, err
	}

	if err := s.Reconcile(ctx, exam, proposals, ModeReplace); err != nil {
		return nil, err
	}

	return &dto.ImportResult{
		Imported: len(proposals),
		Room:     exam.Room,
	}, nil
}

// Export renders the session's roster as an XLSX file, seats in seat-number
// order.
func (s *SeatService) Export(ctx context.Context, sel dto.SessionSelector) (*models.Exam, *bytes.Buffer, error) {
	exam, err := s.examService.Resolve(ctx, sel)
	if err != nil {
		return nil, nil, err
	}

	seats, err := s.seatRepo.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, nil, apperrors.NewStorageError("loading seats for export", err)
	}
	if len(seats) == 0 {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrSeatNotFound, fmt.Sprintf(
			"no seats recorded for room %s, nothing to export", exam.Room))
	}

	buf, err := excel.ExportSeats(exam, seats)
	if err != nil {
		return nil, nil, apperrors.NewStorageError("rendering export file", err)
	}

	return exam, buf, nil
}

// ListSeats serves a session's seats in seat-number order. When no session
// matches the selector it falls back to the legacy join over rows written
// before the exam/seat split, which additionally requires the subject.
func (s *SeatService) ListSeats(ctx context.Context, sel dto.SessionSelector, subject string) ([]*models.Seat, error) {
	exam, err := s.examService.Resolve(ctx, sel)
	if err == nil {
		seats, err := s.seatRepo.ListByExam(ctx, exam.ID)
		if err != nil {
			return nil, apperrors.NewStorageError("loading seats", err)
		}
		return seats, nil
	}
	if !errors.Is(err, apperrors.ErrExamNotFound) {
		return nil, err
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required when the exam is not registered")
	}

	room, startTime, endTime, examDate, err := parseSelector(sel)
	if err != nil {
		return nil, err
	}

	seats, err := s.seatRepo.ListLegacy(ctx, room, startTime, endTime, examDate, subject)
	if err != nil {
		return nil, apperrors.NewStorageError("loading legacy seats", err)
	}
	return seats, nil
}

// PatchByRoom overwrites individual seat occupants looked up by room and seat
// number. The room must host exactly one exam; a room with several sessions
// makes the lookup ambiguous and the whole patch is rejected. A seat number
// with no persisted row fails the call rather than being skipped.
func (s *SeatService) PatchByRoom(ctx context.Context, req dto.ManualPatchRequest) error {
	room := strings.TrimSpace(req.Room)
	if room == "" {
		return apperrors.NewValidationError("room is required")
	}
	if len(req.Assignments) == 0 {
		return apperrors.NewValidationError("no seat assignments supplied")
	}

	// Parse every key up front so a malformed entry rejects the patch
	// before anything is written.
	numbers := make([]int, 0, len(req.Assignments))
	names := make(map[int]string, len(req.Assignments))
	for key, name := range req.Assignments {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || n <= 0 {
			return apperrors.NewValidationError(fmt.Sprintf("invalid seat number %q", key))
		}
		numbers = append(numbers, n)
		names[n] = strings.TrimSpace(name)
	}
	sort.Ints(numbers)

	exams, err := s.examService.examRepo.GetByRoom(ctx, room)
	if err != nil {
		return apperrors.NewStorageError("resolving room", err)
	}
	switch {
	case len(exams) == 0:
		return apperrors.NewNotFoundError(fmt.Sprintf("no exam found in room %s", room))
	case len(exams) > 1:
		return apperrors.NewValidationError(fmt.Sprintf(
			"room %s hosts %d exams, a seat lookup by room alone is ambiguous", room, len(exams)))
	}

	for _, n := range numbers {
		seat, err := s.seatRepo.GetByRoomAndNumber(ctx, room, n)
		if err != nil {
			if errors.Is(err, repositories.ErrSeatNotFound) {
				return apperrors.NewCustomError(apperrors.ErrSeatNotFound, fmt.Sprintf(
					"seat %d not found in room %s", n, room))
			}
			return apperrors.NewStorageError("looking up seat", err)
		}

		name := names[n]
		if err := s.seatRepo.UpdateAssignment(ctx, seat.ID, name, name == ""); err != nil {
			return apperrors.NewStorageError("updating seat", err)
		}
	}

	return nil
}
