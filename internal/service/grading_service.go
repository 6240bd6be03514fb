package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/models"
	"github.com/quangdm/exam-portal-api/internal/observability"
	"github.com/quangdm/exam-portal-api/internal/repository"
	"github.com/quangdm/exam-portal-api/internal/sanitize"
)

var (
	// ErrSubmissionNotFound indicates the submission was not located.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrScoreOutOfRange indicates a grade falls outside [0, max_score].
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrAnswerNotFound indicates a grade references a question the submission
	// has no answer record for.
	ErrAnswerNotFound = errors.New("answer not found in submission")
)

// GradingService drives the teacher grading queue.
type GradingService interface {
	ListForGrading(ctx context.Context, filter dto.GradingListFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, id uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions  repository.SubmissionRepository
	validator    *validator.Validate
	blobs        BlobStore
	signedURLTTL time.Duration
	logger       zerolog.Logger
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, validate *validator.Validate, blobs BlobStore, signedURLTTL time.Duration, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions:  submissions,
		validator:    validate,
		blobs:        blobs,
		signedURLTTL: signedURLTTL,
		logger:       logger.With().Str("component", "grading_service").Logger(),
	}
}

func (s *gradingService) ListForGrading(ctx context.Context, filter dto.GradingListFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListForGrading(ctx, repository.SubmissionFilter{
		Subject:   filter.Subject,
		SetNumber: filter.SetNumber,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *gradingService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(submission)
	s.signAudioURLs(ctx, &response)

	return response, nil
}

// Grade applies per-question scores and comments, recomputes the final score
// over every answer record and marks the submission graded. Regrading an
// already graded submission follows the same path.
func (s *gradingService) Grade(ctx context.Context, id uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/quangdm/exam-portal-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.save")
	span.SetAttributes(attribute.Int64("grading.submission_id", int64(id)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	records, err := submission.GetAnswers()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer_decode_failed")
		return dto.SubmissionResponse{}, err
	}

	for qid, grade := range payload.Answers {
		record, ok := records[qid]
		if !ok {
			span.SetStatus(codes.Error, "answer_not_found")
			return dto.SubmissionResponse{}, fmt.Errorf("%w: question %s", ErrAnswerNotFound, qid)
		}

		if grade.Score < 0 || grade.Score > record.MaxScore {
			span.SetStatus(codes.Error, "score_out_of_range")
			return dto.SubmissionResponse{}, fmt.Errorf("%w: question %s", ErrScoreOutOfRange, qid)
		}

		record.Score = grade.Score
		record.TeacherComment = sanitize.Text(grade.Comment, sanitize.ContentMaxLen)
		records[qid] = record
	}

	var finalScore float64
	for _, record := range records {
		finalScore += record.Score
	}

	submission.FinalScore = finalScore
	submission.Status = models.SubmissionStatusGraded
	if err := submission.SetAnswers(records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer_encode_failed")
		return dto.SubmissionResponse{}, err
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsGraded().Inc()
	span.SetAttributes(attribute.Float64("grading.final_score", finalScore))

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("final_score", finalScore).
		Msg("submission graded")

	response := dto.NewSubmissionResponse(submission)
	s.signAudioURLs(ctx, &response)

	return response, nil
}

func (s *gradingService) signAudioURLs(ctx context.Context, response *dto.SubmissionResponse) {
	for qid, answer := range response.Answers {
		if answer.AudioPath == "" {
			continue
		}

		url, err := s.blobs.PresignedGet(ctx, answer.AudioPath, s.signedURLTTL)
		if err != nil {
			s.logger.Warn().Err(err).Str("object", answer.AudioPath).Msg("failed to presign recording url")
			continue
		}

		answer.AudioURL = url
		response.Answers[qid] = answer
	}
}
