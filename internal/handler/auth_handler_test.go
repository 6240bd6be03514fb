package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/models"
)

func seedTeacherAccount(t *testing.T, db *gorm.DB, username, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	teacher := models.User{Username: username, PasswordHash: string(hash), Role: models.RoleTeacher, FullName: "Teacher"}
	require.NoError(t, db.Create(&teacher).Error)

	return teacher
}

func jsonBody(t *testing.T, payload interface{}) io.Reader {
	t.Helper()
	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(encoded)
}

func TestAuthHandlerTeacherLogin(t *testing.T) {
	app, db, _ := setupApp(t)
	seedTeacherAccount(t, db, "co.hanh", "secret123")

	req := httptest.NewRequest("POST", "/api/v1/auth/teacher/login", jsonBody(t, dto.TeacherLoginRequest{Username: "co.hanh", Password: "secret123"}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var session struct {
		Data dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &session)
	require.NotEmpty(t, session.Data.Token)
	require.Equal(t, models.RoleTeacher, session.Data.Role)
}

func TestAuthHandlerWrongPassword(t *testing.T) {
	app, db, _ := setupApp(t)
	seedTeacherAccount(t, db, "co.hanh", "secret123")

	req := httptest.NewRequest("POST", "/api/v1/auth/teacher/login", jsonBody(t, dto.TeacherLoginRequest{Username: "co.hanh", Password: "nope"}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandlerStudentLoginByCode(t *testing.T) {
	app, db, _ := setupApp(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("mypassword"), bcrypt.MinCost)
	require.NoError(t, err)
	code := "HS001"
	student := models.User{Username: "an.nguyen", PasswordHash: string(hash), Role: models.RoleStudent, FullName: "An", StudentCode: &code}
	require.NoError(t, db.Create(&student).Error)

	req := httptest.NewRequest("POST", "/api/v1/auth/student/login", jsonBody(t, dto.StudentLoginRequest{Identifier: "hs001", Password: "mypassword"}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var session struct {
		Data dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &session)
	require.Equal(t, "HS001", session.Data.StudentCode)
}

func TestAuthHandlerMissingFields(t *testing.T) {
	app, _, _ := setupApp(t)

	req := httptest.NewRequest("POST", "/api/v1/auth/teacher/login", jsonBody(t, dto.TeacherLoginRequest{Username: "co.hanh"}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
