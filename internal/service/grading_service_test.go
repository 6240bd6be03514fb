package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/models"
)

func seedPendingSubmission(t *testing.T, repo *submissionRepoStub) uint {
	t.Helper()

	submission := models.Submission{
		StudentID:   7,
		StudentCode: "HS001",
		Subject:     "english",
		SetNumber:   1,
		SubmittedAt: time.Now(),
		Status:      models.SubmissionStatusPending,
		FinalScore:  1,
	}
	require.NoError(t, submission.SetAnswers(map[string]models.AnswerRecord{
		"1": {Type: models.QuestionTypeMultipleChoice, MaxScore: 1, Score: 1, StudentChoice: "B", CorrectChoice: "B"},
		"2": {Type: models.QuestionTypeEssay, MaxScore: 1, StudentText: "My day was great"},
		"3": {Type: models.QuestionTypeSpeaking, MaxScore: 1, AudioPath: "submission_recordings/HS001_3.wav"},
	}))
	require.NoError(t, repo.Create(context.Background(), &submission))

	return submission.ID
}

func newGradingTestService(repo *submissionRepoStub, blobs *blobStoreStub) GradingService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewGradingService(repo, validate, blobs, 15*time.Minute, testLogger())
}

func TestGradingServiceGradeRecomputesFinalScore(t *testing.T) {
	repo := newSubmissionRepoStub()
	id := seedPendingSubmission(t, repo)
	svc := newGradingTestService(repo, newBlobStoreStub())

	resp, err := svc.Grade(context.Background(), id, dto.GradeSubmissionRequest{
		Answers: map[string]dto.GradeAnswerInput{
			"2": {Score: 0.5, Comment: "Decent <i>structure</i>"},
			"3": {Score: 1},
		},
	})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusGraded, resp.Status)
	require.Equal(t, 2.5, resp.FinalScore)
	require.Equal(t, 0.5, resp.Answers["2"].Score)
	require.NotContains(t, resp.Answers["2"].TeacherComment, "<i>")
	require.Equal(t, 1.0, resp.Answers["1"].Score)
}

func TestGradingServiceScoreOutOfRange(t *testing.T) {
	repo := newSubmissionRepoStub()
	id := seedPendingSubmission(t, repo)
	svc := newGradingTestService(repo, newBlobStoreStub())

	_, err := svc.Grade(context.Background(), id, dto.GradeSubmissionRequest{
		Answers: map[string]dto.GradeAnswerInput{"2": {Score: 1.5}},
	})
	require.ErrorIs(t, err, ErrScoreOutOfRange)
	require.Zero(t, repo.updates)
}

func TestGradingServiceUnknownAnswer(t *testing.T) {
	repo := newSubmissionRepoStub()
	id := seedPendingSubmission(t, repo)
	svc := newGradingTestService(repo, newBlobStoreStub())

	_, err := svc.Grade(context.Background(), id, dto.GradeSubmissionRequest{
		Answers: map[string]dto.GradeAnswerInput{"99": {Score: 1}},
	})
	require.ErrorIs(t, err, ErrAnswerNotFound)
	require.Zero(t, repo.updates)
}

func TestGradingServiceSubmissionNotFound(t *testing.T) {
	svc := newGradingTestService(newSubmissionRepoStub(), newBlobStoreStub())

	_, err := svc.Grade(context.Background(), 404, dto.GradeSubmissionRequest{
		Answers: map[string]dto.GradeAnswerInput{"1": {Score: 1}},
	})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestGradingServiceRegradeIsRepeatable(t *testing.T) {
	repo := newSubmissionRepoStub()
	id := seedPendingSubmission(t, repo)
	svc := newGradingTestService(repo, newBlobStoreStub())

	payload := dto.GradeSubmissionRequest{
		Answers: map[string]dto.GradeAnswerInput{"2": {Score: 0.5}},
	}

	first, err := svc.Grade(context.Background(), id, payload)
	require.NoError(t, err)

	second, err := svc.Grade(context.Background(), id, payload)
	require.NoError(t, err)
	require.Equal(t, first.FinalScore, second.FinalScore)
	require.Equal(t, models.SubmissionStatusGraded, second.Status)
}

func TestGradingServiceGetSignsRecordingURL(t *testing.T) {
	repo := newSubmissionRepoStub()
	id := seedPendingSubmission(t, repo)
	svc := newGradingTestService(repo, newBlobStoreStub())

	resp, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Contains(t, resp.Answers["3"].AudioURL, "https://blobs.test/submission_recordings/")
	require.Equal(t, "submission_recordings/HS001_3.wav", resp.Answers["3"].AudioPath)
}

func TestGradingServiceListFiltersByStatus(t *testing.T) {
	repo := newSubmissionRepoStub()
	seedPendingSubmission(t, repo)
	svc := newGradingTestService(repo, newBlobStoreStub())

	pending := models.SubmissionStatusPending
	list, err := svc.ListForGrading(context.Background(), dto.GradingListFilter{Subject: "english", SetNumber: 1, Status: &pending})
	require.NoError(t, err)
	require.Len(t, list, 1)

	graded := models.SubmissionStatusGraded
	list, err = svc.ListForGrading(context.Background(), dto.GradingListFilter{Subject: "english", SetNumber: 1, Status: &graded})
	require.NoError(t, err)
	require.Empty(t, list)
}
