package models

// Seat represents one numbered seat of an exam in the 'seat' table.
// No two rows under the same exam share a seat number (unique constraint
// seat_exam_id_seat_number_key). Available is always recomputed from the
// student name on write, never taken from external input.
type Seat struct {
	ID          int64  `json:"id" db:"id"`
	ExamID      int64  `json:"examId" db:"exam_id"`
	SeatNumber  int    `json:"seatNumber" db:"seat_number" example:"1"`
	StudentName string `json:"studentName" db:"student_name" example:"张三"`
	Available   bool   `json:"available" db:"available"`
}
