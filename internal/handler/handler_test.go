package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/config"
	"github.com/quangdm/exam-portal-api/internal/handler"
	"github.com/quangdm/exam-portal-api/internal/models"
	"github.com/quangdm/exam-portal-api/internal/repository"
	"github.com/quangdm/exam-portal-api/internal/router"
	"github.com/quangdm/exam-portal-api/internal/service"
)

type testBlobStore struct {
	objects map[string][]byte
}

func newTestBlobStore() *testBlobStore {
	return &testBlobStore{objects: map[string][]byte{}}
}

func (b *testBlobStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	b.objects[key] = data
	return key, nil
}

func (b *testBlobStore) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://blobs.test/" + key + "?sig=stub", nil
}

// setupApp wires the full route table against sqlite and a stub blob store.
// The JWT middleware is replaced by one that trusts X-Test-User and
// X-Test-Role headers.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *testBlobStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Question{}, &models.Submission{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	blobs := newTestBlobStore()

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	examCache := service.NewExamCache(nil, 0)

	authService := service.NewAuthService(userRepo, nil, "test-secret", 30*time.Minute, 5, 5*time.Minute, logger)
	questionService := service.NewQuestionService(questionRepo, validate, blobs, examCache, logger)
	examService := service.NewExamService(questionRepo, examCache, blobs, 15*time.Minute, logger)
	submissionService := service.NewSubmissionService(submissionRepo, questionRepo, validate, blobs, 15*time.Minute, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, blobs, 15*time.Minute, logger)
	userService := service.NewUserService(userRepo, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, validate, logger),
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		ExamHandler:       handler.NewExamHandler(examService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, userService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		MediaHandler:      handler.NewMediaHandler(blobs, 15*time.Minute, logger),
		JWTMiddleware:     testAuthMiddleware,
	})

	return app, db, blobs
}

func testAuthMiddleware(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			c.Locals("user_id", uint(id))
		}
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func asTeacher(req *http.Request, id uint) {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(id), 10))
	req.Header.Set("X-Test-Role", models.RoleTeacher)
}

func asStudent(req *http.Request, id uint) {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(id), 10))
	req.Header.Set("X-Test-Role", models.RoleStudent)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
