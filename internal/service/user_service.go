package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/models"
	"github.com/quangdm/exam-portal-api/internal/repository"
	"github.com/quangdm/exam-portal-api/internal/sanitize"
)

var (
	// ErrUsernameTaken indicates the username or student code already exists.
	ErrUsernameTaken = errors.New("username or student code already in use")
	// ErrBadStudentCode indicates a student code outside the HS### format.
	ErrBadStudentCode = errors.New("invalid student code format")
	// ErrStudentCodeRequired indicates a student account was provisioned without a code.
	ErrStudentCodeRequired = errors.New("student accounts require a student code")
)

// UserService provisions and administers portal accounts.
type UserService interface {
	Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error)
	ResetPassword(ctx context.Context, id uint, payload dto.ResetPasswordRequest) error
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the account administration service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Username: strings.TrimSpace(payload.Username),
		Role:     payload.Role,
		FullName: sanitize.Text(payload.FullName, sanitize.DefaultMaxLen),
		Class:    sanitize.Text(payload.Class, sanitize.DefaultMaxLen),
	}

	if payload.Role == models.RoleStudent {
		code := models.NormalizeStudentCode(payload.StudentCode)
		if code == "" {
			return dto.UserResponse{}, ErrStudentCodeRequired
		}
		if !models.IsStudentCode(code) {
			return dto.UserResponse{}, ErrBadStudentCode
		}
		user.StudentCode = &code
	}

	if err := user.SetSubjectsTaught(payload.SubjectsTaught); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrUsernameTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, repository.UserFilter{
		Role:  filter.Role,
		Class: filter.Class,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

// ResetPassword replaces the stored credential with a fresh bcrypt hash and
// clears any legacy material on the record.
func (s *userService) ResetPassword(ctx context.Context, id uint, payload dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	user.Password = ""

	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset")

	return nil
}
