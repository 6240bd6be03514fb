package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/service"
	"github.com/quangdm/exam-portal-api/internal/utils"
)

const recordingFieldPrefix = "audio_"

// SubmissionHandler accepts exam submissions from students and serves them
// their own results.
type SubmissionHandler struct {
	submissions service.SubmissionService
	users       service.UserService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, users service.UserService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		users:       users,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the student submission endpoints to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/", h.submit)
	router.Get("/results", h.results)
}

// submit handles the multipart submit payload: a "payload" field carrying the
// JSON answers plus one audio_<question_id> file per speaking answer.
func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	raw := c.FormValue("payload")
	if strings.TrimSpace(raw) == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "payload field is required")
	}

	var payload dto.SubmitExamRequest
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	recordings, err := h.collectRecordings(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid recording field")
	}

	student, err := h.studentIdentity(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "unknown student account")
	}

	submission, err := h.submissions.Submit(c.UserContext(), student, payload, recordings)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "submission accepted", submission)
}

func (h *SubmissionHandler) results(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unknown student account")
	}

	results, err := h.submissions.ResultsForStudent(c.UserContext(), studentID)
	if err != nil {
		h.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to load results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load results")
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *SubmissionHandler) collectRecordings(c *fiber.Ctx) (map[uint]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}

	recordings := map[uint]*multipart.FileHeader{}
	for field, files := range form.File {
		if !strings.HasPrefix(field, recordingFieldPrefix) || len(files) == 0 {
			continue
		}

		questionID, err := strconv.ParseUint(strings.TrimPrefix(field, recordingFieldPrefix), 10, 64)
		if err != nil {
			return nil, err
		}

		recordings[uint(questionID)] = files[0]
	}

	return recordings, nil
}

// studentIdentity loads the full account record so the submission snapshot
// carries the student code and class, which are not in the session token.
func (h *SubmissionHandler) studentIdentity(c *fiber.Ctx) (service.StudentIdentity, error) {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return service.StudentIdentity{}, errors.New("missing user id")
	}

	account, err := h.users.Get(c.UserContext(), studentID)
	if err != nil {
		return service.StudentIdentity{}, err
	}

	return service.StudentIdentity{
		ID:    account.ID,
		Code:  account.StudentCode,
		Name:  account.FullName,
		Class: account.Class,
	}, nil
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrDuplicateSubmission):
		return utils.SendError(c, fiber.StatusConflict, "exam already submitted")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrBadFileType):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("failed to accept submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to accept submission")
	}
}
