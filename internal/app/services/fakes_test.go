package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/app/repositories"
	"github.com/kayra/examseat/internal/pkg/apperrors"
)

// fakeExamStore is an in-memory examStore that enforces the natural-key
// uniqueness the real table's constraint provides.
type fakeExamStore struct {
	exams  []*models.Exam
	nextID int64
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{nextID: 1}
}

func naturalKey(room, startTime, endTime string, examDate time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", room, startTime, endTime, examDate.Format("2006-01-02"))
}

func (f *fakeExamStore) Create(ctx context.Context, exam *models.Exam) error {
	key := naturalKey(exam.Room, exam.StartTime, exam.EndTime, exam.ExamDate)
	for _, existing := range f.exams {
		if naturalKey(existing.Room, existing.StartTime, existing.EndTime, existing.ExamDate) == key {
			return repositories.ErrExamAlreadyExists
		}
	}

	exam.ID = f.nextID
	f.nextID++
	exam.CreatedAt = time.Now()

	stored := *exam
	f.exams = append(f.exams, &stored)
	return nil
}

func (f *fakeExamStore) GetByNaturalKey(ctx context.Context, room, startTime, endTime string, examDate time.Time) (*models.Exam, error) {
	key := naturalKey(room, startTime, endTime, examDate)
	for _, exam := range f.exams {
		if naturalKey(exam.Room, exam.StartTime, exam.EndTime, exam.ExamDate) == key {
			found := *exam
			return &found, nil
		}
	}
	return nil, repositories.ErrExamNotFound
}

func (f *fakeExamStore) GetAll(ctx context.Context) ([]*models.Exam, error) {
	out := make([]*models.Exam, len(f.exams))
	copy(out, f.exams)
	return out, nil
}

func (f *fakeExamStore) GetByRoom(ctx context.Context, room string) ([]*models.Exam, error) {
	var out []*models.Exam
	for _, exam := range f.exams {
		if exam.Room == room {
			out = append(out, exam)
		}
	}
	return out, nil
}

// fakeSeatStore is an in-memory seatStore. SaveBatch mirrors the real
// repository's transactional contract: the stored roster only changes when
// the whole batch goes through.
type fakeSeatStore struct {
	exams  *fakeExamStore
	seats  map[int64][]*models.Seat
	nextID int64
	legacy []*models.Seat

	saveErr error // injected failure for the next SaveBatch
}

func newFakeSeatStore(exams *fakeExamStore) *fakeSeatStore {
	return &fakeSeatStore{
		exams:  exams,
		seats:  make(map[int64][]*models.Seat),
		nextID: 1,
	}
}

func (f *fakeSeatStore) ListByExam(ctx context.Context, examID int64) ([]*models.Seat, error) {
	roster := make([]*models.Seat, 0, len(f.seats[examID]))
	for _, seat := range f.seats[examID] {
		copied := *seat
		roster = append(roster, &copied)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].SeatNumber < roster[j].SeatNumber })
	return roster, nil
}

func (f *fakeSeatStore) ListLegacy(ctx context.Context, room, startTime, endTime string, examDate time.Time, subject string) ([]*models.Seat, error) {
	return f.legacy, nil
}

func (f *fakeSeatStore) SaveBatch(ctx context.Context, examID int64, seats []*models.Seat, clearExisting, upsert bool) error {
	if f.saveErr != nil {
		err := f.saveErr
		f.saveErr = nil
		return err
	}

	var roster []*models.Seat
	if !clearExisting {
		roster = append(roster, f.seats[examID]...)
	}

	byNumber := make(map[int]*models.Seat, len(roster))
	for _, seat := range roster {
		byNumber[seat.SeatNumber] = seat
	}

	for _, seat := range seats {
		if existing, ok := byNumber[seat.SeatNumber]; ok {
			if !upsert {
				return apperrors.NewDuplicateSeatError(seat.SeatNumber)
			}
			existing.StudentName = seat.StudentName
			existing.Available = seat.Available
			continue
		}

		stored := *seat
		stored.ID = f.nextID
		stored.ExamID = examID
		f.nextID++
		roster = append(roster, &stored)
		byNumber[stored.SeatNumber] = &stored
	}

	f.seats[examID] = roster
	return nil
}

func (f *fakeSeatStore) GetByRoomAndNumber(ctx context.Context, room string, seatNumber int) (*models.Seat, error) {
	for _, exam := range f.exams.exams {
		if exam.Room != room {
			continue
		}
		for _, seat := range f.seats[exam.ID] {
			if seat.SeatNumber == seatNumber {
				found := *seat
				return &found, nil
			}
		}
	}
	return nil, repositories.ErrSeatNotFound
}

func (f *fakeSeatStore) UpdateAssignment(ctx context.Context, seatID int64, studentName string, available bool) error {
	for _, roster := range f.seats {
		for _, seat := range roster {
			if seat.ID == seatID {
				seat.StudentName = studentName
				seat.Available = available
				return nil
			}
		}
	}
	return repositories.ErrSeatNotFound
}

// fakeUserStore is an in-memory userStore.
type fakeUserStore struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User), nextID: 1}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if _, exists := f.users[user.Username]; exists {
		return repositories.ErrUsernameExists
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()

	stored := *user
	f.users[user.Username] = &stored
	return nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	found := *user
	return &found, nil
}
