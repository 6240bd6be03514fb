package models

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Roles recognised by the portal.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

var studentCodePattern = regexp.MustCompile(`^HS\d{3,6}$`)

// User represents a portal account, either a student or a teacher.
type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"size:255;uniqueIndex;not null" json:"username"`
	StudentCode *string `gorm:"size:16;uniqueIndex" json:"student_code"`
	// PasswordHash holds a bcrypt digest for accounts created by this system.
	// Records imported from the legacy deployment may hold a hex sha256 digest instead.
	PasswordHash string `gorm:"size:255" json:"-"`
	// Password is the legacy plaintext field. Tolerated on verify only; never written.
	Password       string         `gorm:"size:255" json:"-"`
	Role           string         `gorm:"size:16;not null;index" json:"role"`
	FullName       string         `gorm:"size:255" json:"full_name"`
	Class          string         `gorm:"size:64" json:"class"`
	SubjectsTaught datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsTeacher reports whether the account has the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// NormalizeStudentCode trims and uppercases a candidate student code.
func NormalizeStudentCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsStudentCode reports whether the input matches the HS001..HS123456 code format.
func IsStudentCode(code string) bool {
	return studentCodePattern.MatchString(NormalizeStudentCode(code))
}

// SetSubjectsTaught stores the taught subject list as a JSON array.
func (u *User) SetSubjectsTaught(subjects []string) error {
	if subjects == nil {
		u.SubjectsTaught = datatypes.JSON([]byte("[]"))
		return nil
	}
	data, err := json.Marshal(subjects)
	if err != nil {
		return err
	}
	u.SubjectsTaught = datatypes.JSON(data)
	return nil
}

// GetSubjectsTaught decodes the taught subject list.
func (u User) GetSubjectsTaught() []string {
	if len(u.SubjectsTaught) == 0 {
		return nil
	}
	var subjects []string
	if err := json.Unmarshal(u.SubjectsTaught, &subjects); err != nil {
		return nil
	}
	return subjects
}
