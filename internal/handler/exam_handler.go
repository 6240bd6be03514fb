package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quangdm/exam-portal-api/internal/service"
	"github.com/quangdm/exam-portal-api/internal/utils"
)

// ExamHandler serves exam content to authenticated students.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches the exam delivery endpoint to the router group.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("/", h.get)
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	subject := strings.TrimSpace(c.Query("subject"))
	setNumber, err := parseQueryInt(c, "set_number")
	if err != nil || subject == "" || setNumber <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "subject and set_number are required")
	}

	exam, err := h.service.GetExam(c.UserContext(), subject, setNumber)
	if err != nil {
		h.logger.Error().Err(err).Str("subject", subject).Int("set_number", setNumber).Msg("failed to load exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load exam")
	}

	return utils.SendSuccess(c, "exam retrieved", exam)
}
