package dto

// SeatProposal is one proposed seat assignment before reconciliation.
// It is produced by the JSON batch payload or by the spreadsheet decoder
// and is never persisted as-is. Available is what the source supplied (a
// spreadsheet column may carry it); the reconciliation engine recomputes
// the stored flag from the student name regardless.
type SeatProposal struct {
	SeatNumber  int    `json:"seatNumber"`
	StudentName string `json:"studentName"`
	Available   bool   `json:"available"`
}

// SessionSelector identifies one exam session by its natural key in the
// textual forms every entry point accepts. The time window arrives either as
// the combined display form (timeRange) or as separate startTime/endTime
// values; the combined form wins when both are present.
type SessionSelector struct {
	Room      string `json:"room" form:"room" binding:"required"`
	TimeRange string `json:"timeRange" form:"timeRange"`
	StartTime string `json:"startTime" form:"startTime"`
	EndTime   string `json:"endTime" form:"endTime"`
	ExamDate  string `json:"examDate" form:"examDate" binding:"required"`
}

// BatchSaveRequest is the bulk JSON save payload: a session selector plus
// the proposed seats. Clients cannot supply availability here; only the
// seat number and an optional student name are read.
type BatchSaveRequest struct {
	Room      string          `json:"room" binding:"required"`
	StartTime string          `json:"startTime" binding:"required"`
	EndTime   string          `json:"endTime" binding:"required"`
	ExamDate  string          `json:"examDate" binding:"required"`
	Seats     []BatchSaveSeat `json:"seats" binding:"required"`
}

// BatchSaveSeat is one entry of the bulk JSON save payload
type BatchSaveSeat struct {
	SeatNumber  *int   `json:"seatNumber"`
	StudentName string `json:"studentName"`
}

// ManualPatchRequest is the legacy room-scoped patch payload: seat-number
// strings mapped to student names.
type ManualPatchRequest struct {
	Room        string            `json:"room" binding:"required"`
	Assignments map[string]string `json:"assignments" binding:"required"`
}

// ImportResult reports a successful spreadsheet import
type ImportResult struct {
	Imported int    `json:"imported"`
	Room     string `json:"room"`
}
