package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/service"
	"github.com/quangdm/exam-portal-api/internal/utils"
)

// AuthHandler wires the login and logout endpoints.
type AuthHandler struct {
	service   service.AuthService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, validate *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public login endpoints.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/teacher/login", h.loginTeacher)
	router.Post("/student/login", h.loginStudent)
}

// RegisterProtected attaches the endpoints that require a valid session.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/logout", h.logout)
}

func (h *AuthHandler) loginTeacher(c *fiber.Ctx) error {
	var payload dto.TeacherLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.LoginTeacher(c.UserContext(), c.IP(), payload)
	if err != nil {
		return h.loginError(c, err)
	}

	return utils.SendSuccess(c, "login successful", session)
}

func (h *AuthHandler) loginStudent(c *fiber.Ctx) error {
	var payload dto.StudentLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.LoginStudent(c.UserContext(), payload)
	if err != nil {
		return h.loginError(c, err)
	}

	return utils.SendSuccess(c, "login successful", session)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	token := sessionTokenFromContext(c)
	if token == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "no active session")
	}

	if err := h.service.Logout(c.UserContext(), token); err != nil {
		h.logger.Error().Err(err).Msg("failed to revoke session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to log out")
	}

	return utils.SendSuccess(c, "logged out", nil)
}

// loginError collapses credential failures into one message so responses do
// not reveal whether the account exists.
func (h *AuthHandler) loginError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTooManyAttempts):
		return utils.SendError(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrNoPasswordSet):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	default:
		h.logger.Error().Err(err).Msg("login failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
	}
}
