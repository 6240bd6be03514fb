package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/models"
)

func seedExam(t *testing.T, db *gorm.DB) (mcID, essayID, speakingID uint) {
	t.Helper()

	mc := models.Question{Subject: "english", SetNumber: 1, Type: models.QuestionTypeMultipleChoice, Content: "Choose one", CorrectAnswer: "B"}
	require.NoError(t, mc.SetOptions([]string{"A", "B"}))
	require.NoError(t, db.Create(&mc).Error)

	essay := models.Question{Subject: "english", SetNumber: 1, Type: models.QuestionTypeEssay, Content: "Write about your day"}
	require.NoError(t, essay.SetOptions(nil))
	require.NoError(t, db.Create(&essay).Error)

	speaking := models.Question{Subject: "english", SetNumber: 1, Type: models.QuestionTypeSpeaking, Content: "Introduce yourself"}
	require.NoError(t, speaking.SetOptions(nil))
	require.NoError(t, db.Create(&speaking).Error)

	return mc.ID, essay.ID, speaking.ID
}

func seedStudentUser(t *testing.T, db *gorm.DB, code string) models.User {
	t.Helper()
	student := models.User{Username: "student-" + code, Role: models.RoleStudent, FullName: "Student " + code, Class: "10A1", StudentCode: &code}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func buildSubmitRequest(t *testing.T, payload dto.SubmitExamRequest, recordings map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("payload", string(encoded)))

	for field, content := range recordings {
		part, err := writer.CreateFormFile(field, "answer.wav")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func wavPayload() []byte {
	payload := []byte("RIFF")
	payload = append(payload, 0x24, 0x00, 0x00, 0x00)
	payload = append(payload, []byte("WAVEfmt ")...)
	return payload
}

func TestSubmissionHandlerSubmitAndResults(t *testing.T) {
	app, db, blobs := setupApp(t)
	mcID, essayID, speakingID := seedExam(t, db)
	student := seedStudentUser(t, db, "HS001")

	body, contentType := buildSubmitRequest(t, dto.SubmitExamRequest{
		Subject:   "english",
		SetNumber: 1,
		Answers: []dto.AnswerInput{
			{QuestionID: mcID, Choice: "B"},
			{QuestionID: essayID, Text: "A fine day"},
			{QuestionID: speakingID},
		},
	}, map[string][]byte{
		fmt.Sprintf("audio_%d", speakingID): wavPayload(),
	})

	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	asStudent(req, student.ID)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	require.Equal(t, models.SubmissionStatusPending, created.Data.Status)
	require.Equal(t, 1.0, created.Data.FinalScore)
	require.Equal(t, "HS001", created.Data.StudentCode)
	require.Contains(t, blobs.objects, fmt.Sprintf("submission_recordings/HS001_%d.wav", speakingID))

	results := httptest.NewRequest("GET", "/api/v1/submissions/results", nil)
	asStudent(results, student.ID)

	resp, err = app.Test(results)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Data []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.WithinDuration(t, time.Now(), listed.Data[0].SubmittedAt, time.Minute)
}

func TestSubmissionHandlerDuplicateConflict(t *testing.T) {
	app, db, _ := setupApp(t)
	mcID, _, _ := seedExam(t, db)
	student := seedStudentUser(t, db, "HS002")

	payload := dto.SubmitExamRequest{
		Subject:   "english",
		SetNumber: 1,
		Answers:   []dto.AnswerInput{{QuestionID: mcID, Choice: "A"}},
	}

	body, contentType := buildSubmitRequest(t, payload, nil)
	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	asStudent(req, student.ID)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body, contentType = buildSubmitRequest(t, payload, nil)
	req = httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	asStudent(req, student.ID)

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmissionHandlerUnknownQuestion(t *testing.T) {
	app, db, _ := setupApp(t)
	seedExam(t, db)
	student := seedStudentUser(t, db, "HS003")

	body, contentType := buildSubmitRequest(t, dto.SubmitExamRequest{
		Subject:   "english",
		SetNumber: 1,
		Answers:   []dto.AnswerInput{{QuestionID: 999, Text: "orphan"}},
	}, nil)

	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	asStudent(req, student.ID)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionHandlerRequiresStudentRole(t *testing.T) {
	app, db, _ := setupApp(t)
	mcID, _, _ := seedExam(t, db)

	body, contentType := buildSubmitRequest(t, dto.SubmitExamRequest{
		Subject:   "english",
		SetNumber: 1,
		Answers:   []dto.AnswerInput{{QuestionID: mcID, Choice: "A"}},
	}, nil)

	req := httptest.NewRequest("POST", "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	asTeacher(req, 1)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
