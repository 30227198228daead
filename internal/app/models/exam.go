package models

import "time"

// Exam represents one scheduled exam occurrence in the 'exam' table.
// Its natural key is (room, start_time, end_time, exam_date); at most one
// row exists per key, backed by a unique constraint.
type Exam struct {
	ID           int64     `json:"id" db:"id"`
	Room         string    `json:"room" db:"room" example:"A101"`
	Subject      string    `json:"subject" db:"subject" example:"数学"`
	ExamType     string    `json:"examType" db:"exam_type" example:"闭卷"`
	StartTime    string    `json:"startTime" db:"start_time" example:"09:00"` // normalized HH:mm
	EndTime      string    `json:"endTime" db:"end_time" example:"11:00"`     // normalized HH:mm
	ExamDate     time.Time `json:"examDate" db:"exam_date"`
	StartEndTime string    `json:"startEndTime" db:"start_end_time" example:"09:00 ~ 11:00"` // redundant display form
	Notes        string    `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// TimeRange returns the display form of the exam's time window.
func (e *Exam) TimeRange() string {
	if e.StartEndTime != "" {
		return e.StartEndTime
	}
	return e.StartTime + " ~ " + e.EndTime
}
