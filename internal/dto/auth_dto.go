package dto

import "time"

// TeacherLoginRequest carries teacher credentials.
type TeacherLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// StudentLoginRequest carries a student code (HS001..HS123456) or username plus password.
type StudentLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse returns the session token and basic identity for the client.
type LoginResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      uint      `json:"user_id"`
	Role        string    `json:"role"`
	FullName    string    `json:"full_name"`
	StudentCode string    `json:"student_code,omitempty"`
}
