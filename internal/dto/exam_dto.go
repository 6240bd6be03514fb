package dto

import "github.com/quangdm/exam-portal-api/internal/models"

// ExamQuestion is a question as shown to a student taking the exam.
// The answer key is never included.
type ExamQuestion struct {
	ID       uint     `json:"id"`
	Type     string   `json:"type"`
	Content  string   `json:"content"`
	Options  []string `json:"options,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	AudioURL string   `json:"audio_url,omitempty"`
}

// ExamResponse bundles the questions of one (subject, set_number) exam.
type ExamResponse struct {
	Subject   string         `json:"subject"`
	SetNumber int            `json:"set_number"`
	Questions []ExamQuestion `json:"questions"`
}

// NewExamQuestion strips the answer key from a catalog question.
// Media URLs are minted separately because they expire.
func NewExamQuestion(model models.Question) ExamQuestion {
	return ExamQuestion{
		ID:      model.ID,
		Type:    model.Type,
		Content: model.Content,
		Options: model.GetOptions(),
	}
}
