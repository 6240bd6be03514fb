package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quangdm/exam-portal-api/internal/service"
	"github.com/quangdm/exam-portal-api/internal/utils"
)

// Object key prefixes the media endpoint is willing to sign.
var signableFolders = []string{
	"question_images/",
	"question_audio/",
	"submission_recordings/",
}

// MediaHandler mints short-lived signed URLs for stored media objects.
type MediaHandler struct {
	blobs        service.BlobStore
	signedURLTTL time.Duration
	logger       zerolog.Logger
}

// NewMediaHandler constructs the handler.
func NewMediaHandler(blobs service.BlobStore, signedURLTTL time.Duration, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		blobs:        blobs,
		signedURLTTL: signedURLTTL,
		logger:       logger.With().Str("component", "media_handler").Logger(),
	}
}

// Register attaches the media endpoint to the router group.
func (h *MediaHandler) Register(router fiber.Router) {
	router.Get("/", h.sign)
}

// MediaURLResponse carries one signed retrieval URL.
type MediaURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *MediaHandler) sign(c *fiber.Ctx) error {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" || strings.Contains(path, "..") || !hasSignablePrefix(path) {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid media path")
	}

	url, err := h.blobs.PresignedGet(c.UserContext(), path, h.signedURLTTL)
	if err != nil {
		h.logger.Error().Err(err).Str("object", path).Msg("failed to presign media url")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign media url")
	}

	return utils.SendSuccess(c, "media url signed", MediaURLResponse{
		URL:       url,
		ExpiresAt: time.Now().Add(h.signedURLTTL),
	})
}

func hasSignablePrefix(path string) bool {
	for _, folder := range signableFolders {
		if strings.HasPrefix(path, folder) {
			return true
		}
	}
	return false
}
