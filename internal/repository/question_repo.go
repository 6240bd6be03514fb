package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/models"
)

// DefaultExamQuestionLimit caps how many questions one exam query returns.
const DefaultExamQuestionLimit = 50

// QuestionRepository defines data operations for the question catalog.
type QuestionRepository interface {
	FindByExam(ctx context.Context, subject string, setNumber, limit int) ([]models.Question, error)
	GetByID(ctx context.Context, id uint) (models.Question, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByExam(ctx context.Context, subject string, setNumber, limit int) ([]models.Question, error) {
	if limit <= 0 {
		limit = DefaultExamQuestionLimit
	}

	var questions []models.Question
	err := r.db.WithContext(ctx).
		Where("subject = ?", subject).
		Where("set_number = ?", setNumber).
		Order("id ASC").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var questions []models.Question
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}
