package dto

// GradingListFilter narrows the grading queue to one exam, optionally by status.
type GradingListFilter struct {
	Subject   string  `query:"subject" validate:"required"`
	SetNumber int     `query:"set_number" validate:"required,gt=0"`
	Status    *string `query:"status" validate:"omitempty,oneof=pending graded"`
}

// GradeAnswerInput revises the score and comment of a single answer.
// Objective answers are normally left at their auto-computed score but may be
// overridden here.
type GradeAnswerInput struct {
	Score   float64 `json:"score" validate:"gte=0"`
	Comment string  `json:"comment"`
}

// GradeSubmissionRequest applies per-question grades keyed by question ID.
type GradeSubmissionRequest struct {
	Answers map[string]GradeAnswerInput `json:"answers" validate:"required,min=1,dive"`
}
