package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/db"
	"github.com/kayra/examseat/internal/pkg/apperrors"
	"github.com/kayra/examseat/internal/pkg/dberrors"
)

// Seat error types
var (
	ErrSeatNotFound = errors.New("seat not found")
)

// Constraint backing per-exam seat-number uniqueness.
const seatNumberConstraint = "seat_exam_id_seat_number_key"

// SeatRepository handles database operations for seat assignments
type SeatRepository struct {
	db *pgxpool.Pool
}

// NewSeatRepository creates a new seat repository
func NewSeatRepository(db *pgxpool.Pool) *SeatRepository {
	return &SeatRepository{
		db: db,
	}
}

// ListByExam retrieves all seats of one exam in seat-number order
func (r *SeatRepository) ListByExam(ctx context.Context, examID int64) ([]*models.Seat, error) {
	query := `
		SELECT id, exam_id, seat_number, student_name, available
		FROM seat
		WHERE exam_id = $1
		ORDER BY seat_number
	`

	rows, err := r.db.Query(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSeats(rows)
}

// ListLegacy serves seat rows written before the exam/seat split: it joins on
// the full selector including subject, without resolving an exam row first.
func (r *SeatRepository) ListLegacy(ctx context.Context, room, startTime, endTime string, examDate time.Time, subject string) ([]*models.Seat, error) {
	query := `
		SELECT s.id, s.exam_id, s.seat_number, s.student_name, s.available
		FROM seat s
		JOIN exam e ON e.id = s.exam_id
		WHERE e.room = $1 AND e.start_time = $2 AND e.end_time = $3 AND e.exam_date = $4 AND e.subject = $5
		ORDER BY s.seat_number
	`

	rows, err := r.db.Query(ctx, query, room, startTime, endTime, examDate, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSeats(rows)
}

// SaveBatch persists a validated batch in one transaction. With clearExisting
// the exam's current seats are deleted first (file re-import); with upsert an
// existing seat number is overwritten in place instead of failing. A seat
// number losing the unique-constraint race at write time comes back as a
// DuplicateSeatError naming the seat, not as a bare storage failure.
func (r *SeatRepository) SaveBatch(ctx context.Context, examID int64, seats []*models.Seat, clearExisting, upsert bool) error {
	insertSQL := `
		INSERT INTO seat (exam_id, seat_number, student_name, available)
		VALUES ($1, $2, $3, $4)
	`
	if upsert {
		insertSQL += `
		ON CONFLICT ON CONSTRAINT seat_exam_id_seat_number_key
		DO UPDATE SET student_name = EXCLUDED.student_name, available = EXCLUDED.available
		`
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if clearExisting {
			if _, err := tx.Exec(ctx, `DELETE FROM seat WHERE exam_id = $1`, examID); err != nil {
				return fmt.Errorf("error clearing seats: %w", err)
			}
		}

		for _, seat := range seats {
			if _, err := tx.Exec(ctx, insertSQL, examID, seat.SeatNumber, seat.StudentName, seat.Available); err != nil {
				if dberrors.IsUniqueViolationOn(err, seatNumberConstraint) {
					return apperrors.NewDuplicateSeatError(seat.SeatNumber)
				}
				return fmt.Errorf("error inserting seat %d: %w", seat.SeatNumber, err)
			}
		}

		return nil
	})
}

// GetByRoomAndNumber finds one seat by room and seat number across every exam
// hosted in the room. Callers must have established that the room maps to a
// single exam; with several exams the lookup itself would be ambiguous.
func (r *SeatRepository) GetByRoomAndNumber(ctx context.Context, room string, seatNumber int) (*models.Seat, error) {
	query := `
		SELECT s.id, s.exam_id, s.seat_number, s.student_name, s.available
		FROM seat s
		JOIN exam e ON e.id = s.exam_id
		WHERE e.room = $1 AND s.seat_number = $2
	`

	var seat models.Seat
	err := r.db.QueryRow(ctx, query, room, seatNumber).Scan(
		&seat.ID,
		&seat.ExamID,
		&seat.SeatNumber,
		&seat.StudentName,
		&seat.Available,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, fmt.Errorf("error retrieving seat: %w", err)
	}

	return &seat, nil
}

// UpdateAssignment overwrites one seat's occupant in place
func (r *SeatRepository) UpdateAssignment(ctx context.Context, seatID int64, studentName string, available bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE seat SET student_name = $1, available = $2 WHERE id = $3`,
		studentName, available, seatID)
	if err != nil {
		return fmt.Errorf("error updating seat: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrSeatNotFound
	}

	return nil
}

func scanSeats(rows pgx.Rows) ([]*models.Seat, error) {
	var seats []*models.Seat
	for rows.Next() {
		var seat models.Seat
		if err := rows.Scan(
			&seat.ID,
			&seat.ExamID,
			&seat.SeatNumber,
			&seat.StudentName,
			&seat.Available,
		); err != nil {
			return nil, err
		}
		seats = append(seats, &seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
