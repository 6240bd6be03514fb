package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/models"
	"github.com/quangdm/exam-portal-api/internal/repository"
	"github.com/quangdm/exam-portal-api/internal/sanitize"
)

var (
	// ErrEmptyContent indicates a question body was missing or sanitized away.
	ErrEmptyContent = errors.New("question content must not be empty")
	// ErrQuestionNotFound indicates a referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrMissingAnswerKey indicates an objective question lacks options or a correct answer.
	ErrMissingAnswerKey = errors.New("objective question requires options and a correct answer")
)

// QuestionService orchestrates the question catalog.
type QuestionService interface {
	Create(ctx context.Context, payload dto.QuestionCreateRequest, image, audio *multipart.FileHeader) (dto.QuestionResponse, error)
	FindByExam(ctx context.Context, filter dto.QuestionFilter) ([]dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest, image, audio *multipart.FileHeader) (dto.QuestionResponse, error)
}

type questionService struct {
	questions repository.QuestionRepository
	validator *validator.Validate
	blobs     BlobStore
	cache     *ExamCache
	logger    zerolog.Logger
}

// NewQuestionService constructs the catalog service.
func NewQuestionService(questions repository.QuestionRepository, validate *validator.Validate, blobs BlobStore, cache *ExamCache, logger zerolog.Logger) QuestionService {
	return &questionService{
		questions: questions,
		validator: validate,
		blobs:     blobs,
		cache:     cache,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) Create(ctx context.Context, payload dto.QuestionCreateRequest, image, audio *multipart.FileHeader) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	content := sanitize.Content(payload.Content)
	if content == "" {
		return dto.QuestionResponse{}, ErrEmptyContent
	}

	question := models.Question{
		Subject:   sanitize.Text(payload.Subject, sanitize.DefaultMaxLen),
		SetNumber: payload.SetNumber,
		Type:      payload.Type,
		Content:   content,
	}

	if question.IsObjective() {
		options := splitOptions(payload.Options)
		correct := sanitize.Text(payload.CorrectAnswer, sanitize.DefaultMaxLen)
		if len(options) == 0 || correct == "" {
			return dto.QuestionResponse{}, ErrMissingAnswerKey
		}
		if err := question.SetOptions(options); err != nil {
			return dto.QuestionResponse{}, err
		}
		question.CorrectAnswer = correct
	} else {
		if err := question.SetOptions(nil); err != nil {
			return dto.QuestionResponse{}, err
		}
	}

	// Media goes to the blob store first; only the returned keys are persisted.
	if image != nil {
		key, err := s.uploadMedia(ctx, image, imageFolder, readImageFile)
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		question.ImagePath = key
	}

	if audio != nil {
		key, err := s.uploadMedia(ctx, audio, audioFolder, readAudioFile)
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		question.AudioPath = key
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.cache.Invalidate(ctx, question.Subject, question.SetNumber)
	s.logger.Info().Uint("question_id", question.ID).Str("subject", question.Subject).Msg("question created")

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) FindByExam(ctx context.Context, filter dto.QuestionFilter) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	questions, err := s.questions.FindByExam(ctx, filter.Subject, filter.SetNumber, filter.Limit)
	if err != nil {
		return nil, err
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Update(ctx context.Context, id uint, payload dto.QuestionUpdateRequest, image, audio *multipart.FileHeader) (dto.QuestionResponse, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if payload.Content != nil {
		content := sanitize.Content(*payload.Content)
		if content == "" {
			return dto.QuestionResponse{}, ErrEmptyContent
		}
		question.Content = content
	}

	if payload.Options != nil {
		if err := question.SetOptions(splitOptions(*payload.Options)); err != nil {
			return dto.QuestionResponse{}, err
		}
	}

	if payload.CorrectAnswer != nil {
		question.CorrectAnswer = sanitize.Text(*payload.CorrectAnswer, sanitize.DefaultMaxLen)
	}

	// New media replaces the stored key. The superseded object stays in the
	// bucket; there is no garbage collection pass.
	if image != nil {
		key, err := s.uploadMedia(ctx, image, imageFolder, readImageFile)
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		question.ImagePath = key
	}

	if audio != nil {
		key, err := s.uploadMedia(ctx, audio, audioFolder, readAudioFile)
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		question.AudioPath = key
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.cache.Invalidate(ctx, question.Subject, question.SetNumber)
	s.logger.Info().Uint("question_id", question.ID).Msg("question updated")

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) uploadMedia(ctx context.Context, file *multipart.FileHeader, folder string, read func(*multipart.FileHeader) (mediaFile, error)) (string, error) {
	media, err := read(file)
	if err != nil {
		return "", err
	}

	key := mediaObjectKey(folder, media.extension)
	return s.blobs.Upload(ctx, key, bytes.NewReader(media.payload), int64(len(media.payload)), media.contentType)
}

// splitOptions parses the comma-separated authoring field and sanitizes each entry.
func splitOptions(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	parts := strings.Split(input, ",")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		option := sanitize.Text(part, sanitize.DefaultMaxLen)
		if option != "" {
			options = append(options, option)
		}
	}

	return options
}
