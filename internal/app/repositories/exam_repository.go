package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/pkg/dberrors"
)

// Exam error types
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamAlreadyExists = errors.New("exam with this room and schedule already exists")
)

// Constraint backing the exam natural key.
const examScheduleConstraint = "exam_room_schedule_key"

// ExamRepository handles database operations for exam sessions
type ExamRepository struct {
	db *pgxpool.Pool
}

// NewExamRepository creates a new exam repository
func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{
		db: db,
	}
}

// Create inserts a new exam session. A concurrent insert of the same natural
// key loses against the unique constraint and surfaces as ErrExamAlreadyExists.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	query := `
		INSERT INTO exam (room, subject, exam_type, start_time, end_time, exam_date, start_end_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		exam.Room, exam.Subject, exam.ExamType,
		exam.StartTime, exam.EndTime, exam.ExamDate,
		exam.StartEndTime, exam.Notes,
	).Scan(&exam.ID, &exam.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolationOn(err, examScheduleConstraint) {
			return ErrExamAlreadyExists
		}
		return fmt.Errorf("error creating exam: %w", err)
	}

	return nil
}

// GetByNaturalKey retrieves the exam identified by room, time window and date
func (r *ExamRepository) GetByNaturalKey(ctx context.Context, room, startTime, endTime string, examDate time.Time) (*models.Exam, error) {
	query := `
		SELECT id, room, subject, exam_type, start_time, end_time, exam_date, start_end_time, notes, created_at
		FROM exam
		WHERE room = $1 AND start_time = $2 AND end_time = $3 AND exam_date = $4
	`

	var exam models.Exam
	err := r.db.QueryRow(ctx, query, room, startTime, endTime, examDate).Scan(
		&exam.ID,
		&exam.Room,
		&exam.Subject,
		&exam.ExamType,
		&exam.StartTime,
		&exam.EndTime,
		&exam.ExamDate,
		&exam.StartEndTime,
		&exam.Notes,
		&exam.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("error retrieving exam: %w", err)
	}

	return &exam, nil
}

// GetAll retrieves all exam sessions, newest date first
func (r *ExamRepository) GetAll(ctx context.Context) ([]*models.Exam, error) {
	query := `
		SELECT id, room, subject, exam_type, start_time, end_time, exam_date, start_end_time, notes, created_at
		FROM exam
		ORDER BY exam_date DESC, start_time
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExams(rows)
}

// GetByRoom retrieves every exam session hosted in a room
func (r *ExamRepository) GetByRoom(ctx context.Context, room string) ([]*models.Exam, error) {
	query := `
		SELECT id, room, subject, exam_type, start_time, end_time, exam_date, start_end_time, notes, created_at
		FROM exam
		WHERE room = $1
		ORDER BY exam_date, start_time
	`

	rows, err := r.db.Query(ctx, query, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExams(rows)
}

func scanExams(rows pgx.Rows) ([]*models.Exam, error) {
	var exams []*models.Exam
	for rows.Next() {
		var exam models.Exam
		if err := rows.Scan(
			&exam.ID,
			&exam.Room,
			&exam.Subject,
			&exam.ExamType,
			&exam.StartTime,
			&exam.EndTime,
			&exam.ExamDate,
			&exam.StartEndTime,
			&exam.Notes,
			&exam.CreatedAt,
		); err != nil {
			return nil, err
		}
		exams = append(exams, &exam)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exams, nil
}
