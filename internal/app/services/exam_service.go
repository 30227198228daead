package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/app/repositories"
	"github.com/kayra/examseat/internal/pkg/apperrors"
	"github.com/kayra/examseat/internal/pkg/helpers"
)

// Defaults applied when a file import has to create the session itself and
// the upload carries no descriptive fields.
const (
	DefaultExamType    = "闭卷"
	DefaultImportNotes = "通过Excel导入创建"
)

// examStore is the persistence surface ExamService needs. It is satisfied by
// *repositories.ExamRepository.
type examStore interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByNaturalKey(ctx context.Context, room, startTime, endTime string, examDate time.Time) (*models.Exam, error)
	GetAll(ctx context.Context) ([]*models.Exam, error)
	GetByRoom(ctx context.Context, room string) ([]*models.Exam, error)
}

// ExamService resolves and registers exam sessions by their natural key
// (room, start time, end time, exam date).
type ExamService struct {
	examRepo examStore
}

// NewExamService creates a new exam service instance
func NewExamService(examRepo examStore) *ExamService {
	return &ExamService{
		examRepo: examRepo,
	}
}

// parseSelector validates and normalizes the textual session selector every
// entry point accepts.
func parseSelector(sel dto.SessionSelector) (room, startTime, endTime string, examDate time.Time, err error) {
	room = strings.TrimSpace(sel.Room)
	if room == "" {
		return "", "", "", time.Time{}, apperrors.NewValidationError("room is required")
	}

	if strings.TrimSpace(sel.TimeRange) != "" {
		if startTime, endTime, err = helpers.ParseTimeRange(sel.TimeRange); err != nil {
			return "", "", "", time.Time{}, apperrors.NewValidationError(err.Error())
		}
	} else {
		if startTime, err = helpers.ParseClock(sel.StartTime); err != nil {
			return "", "", "", time.Time{}, apperrors.NewValidationError(err.Error())
		}
		if endTime, err = helpers.ParseClock(sel.EndTime); err != nil {
			return "", "", "", time.Time{}, apperrors.NewValidationError(err.Error())
		}
	}
	if examDate, err = helpers.ParseDate(sel.ExamDate); err != nil {
		return "", "", "", time.Time{}, apperrors.NewValidationError(err.Error())
	}

	return room, startTime, endTime, examDate, nil
}

// Resolve looks up the session matching the selector. It never creates one;
// write paths that require an existing session call this first.
func (s *ExamService) Resolve(ctx context.Context, sel dto.SessionSelector) (*models.Exam, error) {
	room, startTime, endTime, examDate, err := parseSelector(sel)
	if err != nil {
		return nil, err
	}

	exam, err := s.examRepo.GetByNaturalKey(ctx, room, startTime, endTime, examDate)
	if err != nil {
		if errors.Is(err, repositories.ErrExamNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf(
				"no exam found for room %s at %s~%s on %s", room, startTime, endTime, helpers.FormatDate(examDate)))
		}
		return nil, apperrors.NewStorageError("resolving exam", err)
	}

	return exam, nil
}

// ResolveOrCreate returns the session matching the selector, creating it with
// the supplied subject and import defaults when none exists. An existing
// session keeps its descriptive fields untouched. Only the file-import path
// uses this; losing a concurrent-create race falls back to resolving the row
// the winner inserted.
func (s *ExamService) ResolveOrCreate(ctx context.Context, sel dto.SessionSelector, subject string) (*models.Exam, error) {
	room, startTime, endTime, examDate, err := parseSelector(sel)
	if err != nil {
		return nil, err
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required when importing into a new exam")
	}

	exam, err := s.examRepo.GetByNaturalKey(ctx, room, startTime, endTime, examDate)
	if err == nil {
		return exam, nil
	}
	if !errors.Is(err, repositories.ErrExamNotFound) {
		return nil, apperrors.NewStorageError("resolving exam", err)
	}

	exam = &models.Exam{
		Room:         room,
		Subject:      subject,
		ExamType:     DefaultExamType,
		StartTime:    startTime,
		EndTime:      endTime,
		ExamDate:     examDate,
		StartEndTime: startTime + "~" + endTime,
		Notes:        DefaultImportNotes,
	}

	err = s.examRepo.Create(ctx, exam)
	if err == nil {
		return exam, nil
	}
	if errors.Is(err, repositories.ErrExamAlreadyExists) {
		// Another import created the same session between our lookup
		// and insert; use their row.
		exam, err = s.examRepo.GetByNaturalKey(ctx, room, startTime, endTime, examDate)
		if err != nil {
			return nil, apperrors.NewStorageError("re-resolving exam after create race", err)
		}
		return exam, nil
	}
	return nil, apperrors.NewStorageError("creating exam", err)
}

// Register creates a new session from the operator form
func (s *ExamService) Register(ctx context.Context, req dto.RegisterExamRequest) (*models.Exam, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required")
	}
	room := strings.TrimSpace(req.Room)
	if room == "" {
		return nil, apperrors.NewValidationError("room is required")
	}

	examDate, err := helpers.ParseDate(req.ExamDate)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	// The combined display form wins over separate start/end values.
	var startTime, endTime string
	if strings.TrimSpace(req.TimeRange) != "" {
		startTime, endTime, err = helpers.ParseTimeRange(req.TimeRange)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	} else {
		if startTime, err = helpers.ParseClock(req.StartTime); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		if endTime, err = helpers.ParseClock(req.EndTime); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	examType := strings.TrimSpace(req.ExamType)
	if examType == "" {
		examType = DefaultExamType
	}

	exam := &models.Exam{
		Room:         room,
		Subject:      subject,
		ExamType:     examType,
		StartTime:    startTime,
		EndTime:      endTime,
		ExamDate:     examDate,
		StartEndTime: startTime + "~" + endTime,
		Notes:        strings.TrimSpace(req.Notes),
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		if errors.Is(err, repositories.ErrExamAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrExamAlreadyExists, fmt.Sprintf(
				"an exam is already registered for room %s at %s~%s on %s",
				room, startTime, endTime, helpers.FormatDate(examDate)))
		}
		return nil, apperrors.NewStorageError("creating exam", err)
	}

	return exam, nil
}

// Details serves the descriptive subset of one session
func (s *ExamService) Details(ctx context.Context, sel dto.SessionSelector) (*dto.ExamDetailsResponse, error) {
	exam, err := s.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	return &dto.ExamDetailsResponse{
		Subject: exam.Subject,
		Notes:   exam.Notes,
	}, nil
}

// List returns every registered session, newest date first
func (s *ExamService) List(ctx context.Context) ([]*models.Exam, error) {
	exams, err := s.examRepo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("listing exams", err)
	}
	return exams, nil
}
