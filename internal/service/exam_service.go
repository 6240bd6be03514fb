package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/repository"
)

// ExamCache keeps the stripped question list of an exam in redis so repeated
// pulls while a class is sitting the exam do not hammer the catalog. The
// cached entries never contain answer keys; signed media URLs are minted per
// request because they expire before the cache does.
type ExamCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExamCache constructs the cache wrapper. A nil client disables caching.
func NewExamCache(client *redis.Client, ttl time.Duration) *ExamCache {
	return &ExamCache{client: client, ttl: ttl}
}

type cachedExamQuestion struct {
	ID        uint     `json:"id"`
	Type      string   `json:"type"`
	Content   string   `json:"content"`
	Options   []string `json:"options,omitempty"`
	ImagePath string   `json:"image_path,omitempty"`
	AudioPath string   `json:"audio_path,omitempty"`
}

func examCacheKey(subject string, setNumber int) string {
	return fmt.Sprintf("exam:%s:%d", subject, setNumber)
}

func (c *ExamCache) get(ctx context.Context, subject string, setNumber int) ([]cachedExamQuestion, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, examCacheKey(subject, setNumber)).Result()
	if err != nil {
		return nil, false
	}

	var questions []cachedExamQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, false
	}

	return questions, true
}

func (c *ExamCache) set(ctx context.Context, subject string, setNumber int, questions []cachedExamQuestion) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(questions)
	if err != nil {
		return
	}

	_ = c.client.Set(ctx, examCacheKey(subject, setNumber), payload, c.ttl).Err()
}

// Invalidate drops the cached question list for one exam.
func (c *ExamCache) Invalidate(ctx context.Context, subject string, setNumber int) {
	if c == nil || c.client == nil {
		return
	}

	_ = c.client.Del(ctx, examCacheKey(subject, setNumber)).Err()
}

// ExamService serves exam content to students, with the answer keys removed.
type ExamService interface {
	GetExam(ctx context.Context, subject string, setNumber int) (dto.ExamResponse, error)
}

type examService struct {
	questions    repository.QuestionRepository
	cache        *ExamCache
	blobs        BlobStore
	signedURLTTL time.Duration
	logger       zerolog.Logger
}

// NewExamService constructs the exam delivery service.
func NewExamService(questions repository.QuestionRepository, cache *ExamCache, blobs BlobStore, signedURLTTL time.Duration, logger zerolog.Logger) ExamService {
	return &examService{
		questions:    questions,
		cache:        cache,
		blobs:        blobs,
		signedURLTTL: signedURLTTL,
		logger:       logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) GetExam(ctx context.Context, subject string, setNumber int) (dto.ExamResponse, error) {
	cached, hit := s.cache.get(ctx, subject, setNumber)
	if !hit {
		questions, err := s.questions.FindByExam(ctx, subject, setNumber, repository.DefaultExamQuestionLimit)
		if err != nil {
			return dto.ExamResponse{}, err
		}

		cached = make([]cachedExamQuestion, 0, len(questions))
		for _, question := range questions {
			cached = append(cached, cachedExamQuestion{
				ID:        question.ID,
				Type:      question.Type,
				Content:   question.Content,
				Options:   question.GetOptions(),
				ImagePath: question.ImagePath,
				AudioPath: question.AudioPath,
			})
		}

		s.cache.set(ctx, subject, setNumber, cached)
	} else {
		s.logger.Debug().Str("subject", subject).Int("set_number", setNumber).Msg("exam cache hit")
	}

	response := dto.ExamResponse{
		Subject:   subject,
		SetNumber: setNumber,
		Questions: make([]dto.ExamQuestion, 0, len(cached)),
	}

	for _, question := range cached {
		examQuestion := dto.ExamQuestion{
			ID:      question.ID,
			Type:    question.Type,
			Content: question.Content,
			Options: question.Options,
		}

		if question.ImagePath != "" {
			if url, err := s.blobs.PresignedGet(ctx, question.ImagePath, s.signedURLTTL); err == nil {
				examQuestion.ImageURL = url
			} else {
				s.logger.Warn().Err(err).Str("object", question.ImagePath).Msg("failed to presign image url")
			}
		}

		if question.AudioPath != "" {
			if url, err := s.blobs.PresignedGet(ctx, question.AudioPath, s.signedURLTTL); err == nil {
				examQuestion.AudioURL = url
			} else {
				s.logger.Warn().Err(err).Str("object", question.AudioPath).Msg("failed to presign audio url")
			}
		}

		response.Questions = append(response.Questions, examQuestion)
	}

	return response, nil
}
