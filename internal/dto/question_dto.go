package dto

import (
	"time"

	"github.com/quangdm/exam-portal-api/internal/models"
)

// QuestionCreateRequest describes the multipart payload for creating a question.
// Options arrive as a comma-separated string, matching the authoring form.
type QuestionCreateRequest struct {
	Subject       string `form:"subject" validate:"required"`
	SetNumber     int    `form:"set_number" validate:"required,gt=0"`
	Type          string `form:"type" validate:"required,oneof=multiple_choice listening speaking essay"`
	Content       string `form:"content"`
	Options       string `form:"options"`
	CorrectAnswer string `form:"correct_answer"`
}

// QuestionUpdateRequest overwrites only the provided fields.
type QuestionUpdateRequest struct {
	Content       *string `form:"content"`
	Options       *string `form:"options"`
	CorrectAnswer *string `form:"correct_answer"`
}

// QuestionFilter narrows catalog listings to one exam.
type QuestionFilter struct {
	Subject   string `query:"subject" validate:"required"`
	SetNumber int    `query:"set_number" validate:"required,gt=0"`
	Limit     int    `query:"limit" validate:"omitempty,gt=0"`
}

// QuestionResponse is returned to teachers; it includes the answer key.
type QuestionResponse struct {
	ID            uint      `json:"id"`
	Subject       string    `json:"subject"`
	SetNumber     int       `json:"set_number"`
	Type          string    `json:"type"`
	Content       string    `json:"content"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	ImagePath     string    `json:"image_path"`
	AudioPath     string    `json:"audio_path"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:            model.ID,
		Subject:       model.Subject,
		SetNumber:     model.SetNumber,
		Type:          model.Type,
		Content:       model.Content,
		Options:       model.GetOptions(),
		CorrectAnswer: model.CorrectAnswer,
		ImagePath:     model.ImagePath,
		AudioPath:     model.AudioPath,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewQuestionResponseSlice converts question models into DTOs.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}

	return responses
}
