package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Question types supported by the exam catalog.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeListening      = "listening"
	QuestionTypeSpeaking       = "speaking"
	QuestionTypeEssay          = "essay"
)

// Question represents a single exam question belonging to a (subject, set_number) exam.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Subject       string         `gorm:"size:128;not null;index:idx_questions_exam" json:"subject"`
	SetNumber     int            `gorm:"not null;index:idx_questions_exam" json:"set_number"`
	Type          string         `gorm:"size:32;not null" json:"type"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	Options       datatypes.JSON `gorm:"type:json" json:"-"`
	CorrectAnswer string         `gorm:"size:500" json:"correct_answer"`
	ImagePath     string         `gorm:"size:512" json:"image_path"`
	AudioPath     string         `gorm:"size:512" json:"audio_path"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsObjective reports whether the question is auto-scorable by exact match.
func (q Question) IsObjective() bool {
	return q.Type == QuestionTypeMultipleChoice || q.Type == QuestionTypeListening
}

// IsValidQuestionType reports whether the supplied type is one of the supported kinds.
func IsValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeListening, QuestionTypeSpeaking, QuestionTypeEssay:
		return true
	default:
		return false
	}
}

// SetOptions stores the answer options as a JSON array.
func (q *Question) SetOptions(options []string) error {
	if options == nil {
		q.Options = datatypes.JSON([]byte("[]"))
		return nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(data)
	return nil
}

// GetOptions decodes the stored answer options.
func (q Question) GetOptions() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}
	return options
}
