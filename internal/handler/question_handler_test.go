package handler_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/quangdm/exam-portal-api/internal/dto"
)

func buildQuestionForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestQuestionHandlerCreateAndList(t *testing.T) {
	app, _, _ := setupApp(t)

	body, contentType := buildQuestionForm(t, map[string]string{
		"subject":        "english",
		"set_number":     "1",
		"type":           "multiple_choice",
		"content":        "Pick the correct article",
		"options":        "a, an, the",
		"correct_answer": "the",
	})

	req := httptest.NewRequest("POST", "/api/v1/questions", body)
	req.Header.Set("Content-Type", contentType)
	asTeacher(req, 1)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.QuestionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.NotZero(t, created.Data.ID)
	require.Equal(t, []string{"a", "an", "the"}, created.Data.Options)

	list := httptest.NewRequest("GET", "/api/v1/questions?subject=english&set_number=1", nil)
	asTeacher(list, 1)

	resp, err = app.Test(list)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Data []dto.QuestionResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.Equal(t, "the", listed.Data[0].CorrectAnswer)
}

func TestQuestionHandlerCreateRejectsMissingKey(t *testing.T) {
	app, _, _ := setupApp(t)

	body, contentType := buildQuestionForm(t, map[string]string{
		"subject":    "english",
		"set_number": "1",
		"type":       "listening",
		"content":    "What did the speaker order?",
	})

	req := httptest.NewRequest("POST", "/api/v1/questions", body)
	req.Header.Set("Content-Type", contentType)
	asTeacher(req, 1)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestQuestionHandlerUpdate(t *testing.T) {
	app, db, _ := setupApp(t)
	mcID, _, _ := seedExam(t, db)

	body, contentType := buildQuestionForm(t, map[string]string{
		"content": "Revised prompt",
	})

	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/v1/questions/%d", mcID), body)
	req.Header.Set("Content-Type", contentType)
	asTeacher(req, 1)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated struct {
		Data dto.QuestionResponse `json:"data"`
	}
	decodeResponse(t, resp, &updated)
	require.Equal(t, "Revised prompt", updated.Data.Content)
	require.Equal(t, "B", updated.Data.CorrectAnswer)
}

func TestQuestionHandlerStudentForbidden(t *testing.T) {
	app, _, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/api/v1/questions?subject=english&set_number=1", nil)
	asStudent(req, 1)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
