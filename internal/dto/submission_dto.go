package dto

import (
	"time"

	"github.com/quangdm/exam-portal-api/internal/models"
)

// AnswerInput is one student answer in a submit payload. Choice applies to
// multiple_choice/listening, Text to essay; speaking answers travel as
// multipart files keyed audio_<question_id>.
type AnswerInput struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	Choice     string `json:"choice"`
	Text       string `json:"text"`
}

// SubmitExamRequest is the JSON part of the multipart submit payload.
type SubmitExamRequest struct {
	Subject   string        `json:"subject" validate:"required"`
	SetNumber int           `json:"set_number" validate:"required,gt=0"`
	Answers   []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// AnswerView serializes one answer record; AudioURL is a short-lived signed
// link minted at read time while AudioPath stays the stored object key.
type AnswerView struct {
	Type            string  `json:"type"`
	QuestionContent string  `json:"question_content"`
	MaxScore        float64 `json:"max_score"`
	Score           float64 `json:"score"`
	TeacherComment  string  `json:"teacher_comment"`
	StudentChoice   string  `json:"student_choice,omitempty"`
	CorrectChoice   string  `json:"correct_choice,omitempty"`
	StudentText     string  `json:"student_text,omitempty"`
	AudioPath       string  `json:"audio_path,omitempty"`
	AudioURL        string  `json:"audio_url,omitempty"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                  `json:"id"`
	StudentID    uint                  `json:"student_id"`
	StudentCode  string                `json:"student_code"`
	StudentName  string                `json:"student_name"`
	StudentClass string                `json:"student_class"`
	Subject      string                `json:"subject"`
	SetNumber    int                   `json:"set_number"`
	SubmittedAt  time.Time             `json:"submitted_at"`
	Status       string                `json:"status"`
	FinalScore   float64               `json:"final_score"`
	Answers      map[string]AnswerView `json:"answers"`
}

// NewSubmissionResponse converts a Submission model into a DTO. A corrupted
// answer blob yields an empty answer map rather than an error.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		StudentID:    model.StudentID,
		StudentCode:  model.StudentCode,
		StudentName:  model.StudentName,
		StudentClass: model.StudentClass,
		Subject:      model.Subject,
		SetNumber:    model.SetNumber,
		SubmittedAt:  model.SubmittedAt,
		Status:       model.Status,
		FinalScore:   model.FinalScore,
		Answers:      map[string]AnswerView{},
	}

	answers, err := model.GetAnswers()
	if err != nil {
		return response
	}

	for qid, record := range answers {
		response.Answers[qid] = AnswerView{
			Type:            record.Type,
			QuestionContent: record.QuestionContent,
			MaxScore:        record.MaxScore,
			Score:           record.Score,
			TeacherComment:  record.TeacherComment,
			StudentChoice:   record.StudentChoice,
			CorrectChoice:   record.CorrectChoice,
			StudentText:     record.StudentText,
			AudioPath:       record.AudioPath,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
