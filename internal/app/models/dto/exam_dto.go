package dto

// RegisterExamRequest carries the operator form for registering a session.
// The time window arrives either as the combined display form (timeRange)
// or as separate startTime/endTime values; the combined form wins when both
// are present, mirroring the original custom-time-over-default behavior.
type RegisterExamRequest struct {
	Subject   string `json:"subject" binding:"required"`
	Room      string `json:"room" binding:"required"`
	ExamType  string `json:"examType"`
	TimeRange string `json:"timeRange"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	ExamDate  string `json:"examDate" binding:"required"`
	Notes     string `json:"notes"`
}

// ExamDetailsResponse is the descriptive subset served by the details lookup
type ExamDetailsResponse struct {
	Subject string `json:"subject"`
	Notes   string `json:"notes"`
}
