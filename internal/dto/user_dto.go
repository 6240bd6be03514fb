package dto

import (
	"time"

	"github.com/quangdm/exam-portal-api/internal/models"
)

// UserCreateRequest provisions a student or teacher account.
type UserCreateRequest struct {
	Username       string   `json:"username" validate:"required,min=3"`
	Password       string   `json:"password" validate:"required,min=6"`
	Role           string   `json:"role" validate:"required,oneof=student teacher"`
	FullName       string   `json:"full_name" validate:"required"`
	Class          string   `json:"class"`
	StudentCode    string   `json:"student_code"`
	SubjectsTaught []string `json:"subjects_taught"`
}

// ResetPasswordRequest replaces an account password.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// UserFilter narrows account listings.
type UserFilter struct {
	Role  *string `query:"role" validate:"omitempty,oneof=student teacher"`
	Class *string `query:"class"`
}

// UserResponse serializes an account without credential material.
type UserResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	StudentCode    string    `json:"student_code,omitempty"`
	Role           string    `json:"role"`
	FullName       string    `json:"full_name"`
	Class          string    `json:"class,omitempty"`
	SubjectsTaught []string  `json:"subjects_taught,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	response := UserResponse{
		ID:             model.ID,
		Username:       model.Username,
		Role:           model.Role,
		FullName:       model.FullName,
		Class:          model.Class,
		SubjectsTaught: model.GetSubjectsTaught(),
		CreatedAt:      model.CreatedAt,
	}

	if model.StudentCode != nil {
		response.StudentCode = *model.StudentCode
	}

	return response
}

// NewUserResponseSlice converts user models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}

	return responses
}
