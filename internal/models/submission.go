package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle states. There is no transition back to pending and no
// state before pending; an all-objective exam still lands in pending until a
// teacher saves it as graded.
const (
	SubmissionStatusPending = "pending"
	SubmissionStatusGraded  = "graded"
)

// AnswerRecord is one graded (or gradable) answer embedded in a submission.
// question_content and correct_choice are frozen at submission time so later
// catalog edits never alter a graded record.
type AnswerRecord struct {
	Type            string  `json:"type"`
	QuestionContent string  `json:"question_content"`
	MaxScore        float64 `json:"max_score"`
	Score           float64 `json:"score"`
	TeacherComment  string  `json:"teacher_comment"`
	StudentChoice   string  `json:"student_choice,omitempty"`
	CorrectChoice   string  `json:"correct_choice,omitempty"`
	StudentText     string  `json:"student_text,omitempty"`
	AudioPath       string  `json:"audio_path,omitempty"`
}

// Submission is one student's complete attempt at one (subject, set_number) exam.
type Submission struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	StudentID uint `gorm:"not null;uniqueIndex:idx_submissions_exam_once" json:"student_id"`
	// Student identity fields are snapshots taken at submission time.
	StudentCode  string         `gorm:"size:16" json:"student_code"`
	StudentName  string         `gorm:"size:255" json:"student_name"`
	StudentClass string         `gorm:"size:64" json:"student_class"`
	Subject      string         `gorm:"size:128;not null;uniqueIndex:idx_submissions_exam_once" json:"subject"`
	SetNumber    int            `gorm:"not null;uniqueIndex:idx_submissions_exam_once" json:"set_number"`
	SubmittedAt  time.Time      `gorm:"not null" json:"submitted_at"`
	Status       string         `gorm:"size:16;not null;index" json:"status"`
	FinalScore   float64        `gorm:"not null" json:"final_score"`
	Answers      datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Student      User           `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsGraded reports whether a teacher has saved grades for this submission.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// SetAnswers stores the answer map keyed by question ID.
func (s *Submission) SetAnswers(answers map[string]AnswerRecord) error {
	if answers == nil {
		answers = map[string]AnswerRecord{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	s.Answers = datatypes.JSON(data)
	return nil
}

// GetAnswers decodes the stored answer map.
func (s Submission) GetAnswers() (map[string]AnswerRecord, error) {
	answers := map[string]AnswerRecord{}
	if len(s.Answers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
