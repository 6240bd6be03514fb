package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
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

// ErrDuplicateSubmission indicates the student already submitted this exam.
var ErrDuplicateSubmission = errors.New("exam already submitted")

// StudentIdentity carries the authenticated student fields frozen into a
// submission at the moment it is accepted.
type StudentIdentity struct {
	ID    uint
	Code  string
	Name  string
	Class string
}

// SubmissionService accepts exam submissions and serves students their own results.
type SubmissionService interface {
	Submit(ctx context.Context, student StudentIdentity, payload dto.SubmitExamRequest, recordings map[uint]*multipart.FileHeader) (dto.SubmissionResponse, error)
	ResultsForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions  repository.SubmissionRepository
	questions    repository.QuestionRepository
	validator    *validator.Validate
	blobs        BlobStore
	signedURLTTL time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, questions repository.QuestionRepository, validate *validator.Validate, blobs BlobStore, signedURLTTL time.Duration, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions:  submissions,
		questions:    questions,
		validator:    validate,
		blobs:        blobs,
		signedURLTTL: signedURLTTL,
		logger:       logger.With().Str("component", "submission_service").Logger(),
		now:          time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, student StudentIdentity, payload dto.SubmitExamRequest, recordings map[uint]*multipart.FileHeader) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/quangdm/exam-portal-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.submit")
	span.SetAttributes(
		attribute.Int64("submission.student_id", int64(student.ID)),
		attribute.String("submission.subject", payload.Subject),
		attribute.Int("submission.set_number", payload.SetNumber),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	exists, err := s.submissions.ExistsForExam(ctx, student.ID, payload.Subject, payload.SetNumber)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "duplicate_check_failed")
		return dto.SubmissionResponse{}, err
	}
	if exists {
		span.SetStatus(codes.Error, "duplicate_submission")
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}

	questionByID, err := s.loadQuestions(ctx, payload.Answers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "question_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	records, finalScore, err := s.buildAnswers(ctx, student, payload.Answers, questionByID, recordings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer_build_failed")
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		StudentID:    student.ID,
		StudentCode:  student.Code,
		StudentName:  student.Name,
		StudentClass: student.Class,
		Subject:      payload.Subject,
		SetNumber:    payload.SetNumber,
		SubmittedAt:  s.now(),
		Status:       models.SubmissionStatusPending,
		FinalScore:   finalScore,
	}
	if err := submission.SetAnswers(records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer_encode_failed")
		return dto.SubmissionResponse{}, err
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// A racing insert past the pre-check lands on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "duplicate_submission")
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_create_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsCreated().Inc()
	span.SetAttributes(
		attribute.Int64("submission.id", int64(submission.ID)),
		attribute.Float64("submission.objective_score", finalScore),
	)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("student_id", student.ID).
		Str("subject", payload.Subject).
		Int("set_number", payload.SetNumber).
		Float64("objective_score", finalScore).
		Msg("submission accepted")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ResultsForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := dto.NewSubmissionResponseSlice(submissions)
	for i := range responses {
		s.signAudioURLs(ctx, &responses[i])
	}

	return responses, nil
}

// loadQuestions re-fetches every referenced question server side. A single
// unknown ID fails the whole submission.
func (s *submissionService) loadQuestions(ctx context.Context, answers []dto.AnswerInput) (map[uint]models.Question, error) {
	ids := make([]uint, 0, len(answers))
	seen := map[uint]bool{}
	for _, answer := range answers {
		if !seen[answer.QuestionID] {
			seen[answer.QuestionID] = true
			ids = append(ids, answer.QuestionID)
		}
	}

	questions, err := s.questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrQuestionNotFound, id)
		}
	}

	return byID, nil
}

// buildAnswers freezes one answer record per referenced question and scores the
// objective ones. When the same question appears twice in the payload, the
// last answer wins.
func (s *submissionService) buildAnswers(ctx context.Context, student StudentIdentity, answers []dto.AnswerInput, questionByID map[uint]models.Question, recordings map[uint]*multipart.FileHeader) (map[string]models.AnswerRecord, float64, error) {
	records := make(map[string]models.AnswerRecord, len(answers))

	for _, answer := range answers {
		question := questionByID[answer.QuestionID]

		record := models.AnswerRecord{
			Type:            question.Type,
			QuestionContent: question.Content,
			MaxScore:        1,
		}

		switch {
		case question.IsObjective():
			record.StudentChoice = sanitize.Text(answer.Choice, sanitize.DefaultMaxLen)
			record.CorrectChoice = question.CorrectAnswer
			// Exact, case-sensitive match against the stored key.
			if record.StudentChoice != "" && record.StudentChoice == record.CorrectChoice {
				record.Score = 1
			}

		case question.Type == models.QuestionTypeSpeaking:
			file, ok := recordings[answer.QuestionID]
			if ok && file != nil {
				key, err := s.uploadRecording(ctx, student.Code, answer.QuestionID, file)
				if err != nil {
					return nil, 0, err
				}
				record.AudioPath = key
			}

		default:
			record.StudentText = sanitize.Content(answer.Text)
		}

		records[fmt.Sprintf("%d", answer.QuestionID)] = record
	}

	var finalScore float64
	for _, record := range records {
		finalScore += record.Score
	}

	return records, finalScore, nil
}

func (s *submissionService) uploadRecording(ctx context.Context, studentCode string, questionID uint, file *multipart.FileHeader) (string, error) {
	media, err := readAudioFile(file)
	if err != nil {
		observability.UploadRejections().WithLabelValues(rejectionReason(err)).Inc()
		return "", err
	}

	key := recordingObjectKey(studentCode, questionID, media.extension)
	return s.blobs.Upload(ctx, key, bytes.NewReader(media.payload), int64(len(media.payload)), media.contentType)
}

func (s *submissionService) signAudioURLs(ctx context.Context, response *dto.SubmissionResponse) {
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

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, ErrBadFileType):
		return "bad_type"
	default:
		return "read_failed"
	}
}
