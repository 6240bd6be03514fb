package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quangdm/exam-portal-api/internal/dto"
	"github.com/quangdm/exam-portal-api/internal/models"
	"github.com/quangdm/exam-portal-api/internal/repository"
)

// Authentication failures surfaced to the login forms. All of them map to 4xx
// responses; none abort the request pipeline.
var (
	ErrUserNotFound    = errors.New("account not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrNoPasswordSet   = errors.New("no password set for account")
	ErrTooManyAttempts = errors.New("too many login attempts")
)

const revokedSessionKeyPrefix = "session:revoked:"

// AuthService issues and revokes time-boxed sessions.
type AuthService interface {
	LoginTeacher(ctx context.Context, clientKey string, payload dto.TeacherLoginRequest) (dto.LoginResponse, error)
	LoginStudent(ctx context.Context, payload dto.StudentLoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   *redis.Client
	jwtSecret  []byte
	sessionTTL time.Duration
	attempts   *loginAttemptWindow
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs the authentication service. The failed-attempt
// window is process-local; it is not shared across instances.
func NewAuthService(users repository.UserRepository, sessions *redis.Client, jwtSecret string, sessionTTL time.Duration, maxAttempts int, attemptWindow time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		attempts:   newLoginAttemptWindow(maxAttempts, attemptWindow),
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

func (s *authService) LoginTeacher(ctx context.Context, clientKey string, payload dto.TeacherLoginRequest) (dto.LoginResponse, error) {
	if s.attempts.exceeded(clientKey, s.now()) {
		s.logger.Warn().Str("client", clientKey).Msg("teacher login rate limited")
		return dto.LoginResponse{}, ErrTooManyAttempts
	}

	user, err := s.users.GetByUsernameAndRole(ctx, strings.TrimSpace(payload.Username), models.RoleTeacher)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.attempts.record(clientKey, s.now())
			return dto.LoginResponse{}, ErrUserNotFound
		}
		return dto.LoginResponse{}, err
	}

	if err := verifyPassword(user, payload.Password); err != nil {
		s.attempts.record(clientKey, s.now())
		return dto.LoginResponse{}, err
	}

	s.attempts.reset(clientKey)

	response, err := s.issueSession(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("teacher logged in")

	return response, nil
}

func (s *authService) LoginStudent(ctx context.Context, payload dto.StudentLoginRequest) (dto.LoginResponse, error) {
	identifier := strings.TrimSpace(payload.Identifier)

	var user models.User
	var found bool

	if models.IsStudentCode(identifier) {
		code := models.NormalizeStudentCode(identifier)
		if byCode, err := s.users.GetByStudentCode(ctx, code); err == nil {
			user = byCode
			found = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, err
		}
	}

	if !found {
		byName, err := s.users.GetByUsernameAndRole(ctx, identifier, models.RoleStudent)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.LoginResponse{}, ErrUserNotFound
			}
			return dto.LoginResponse{}, err
		}
		user = byName
	}

	if err := verifyPassword(user, payload.Password); err != nil {
		return dto.LoginResponse{}, err
	}

	response, err := s.issueSession(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("student logged in")

	return response, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		// Expired or malformed sessions are already unusable.
		return nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	tokenID, _ := claims["jti"].(string)
	if tokenID == "" || s.sessions == nil {
		return nil
	}

	remaining := s.sessionTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		remaining = time.Until(exp.Time)
	}
	if remaining <= 0 {
		return nil
	}

	if err := s.sessions.Set(ctx, revokedSessionKeyPrefix+tokenID, "1", remaining).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

func (s *authService) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" || s.sessions == nil {
		return false, nil
	}

	_, err := s.sessions.Get(ctx, revokedSessionKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *authService) issueSession(user models.User) (dto.LoginResponse, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.sessionTTL)

	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"name": user.FullName,
		"jti":  uuid.NewString(),
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	response := dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Role:      user.Role,
		FullName:  user.FullName,
	}

	if user.StudentCode != nil {
		response.StudentCode = *user.StudentCode
	}

	return response, nil
}

// verifyPassword walks the supported storage forms: bcrypt hash, legacy
// sha256 hex digest, then legacy plaintext. Records with none of them are
// rejected outright.
func verifyPassword(user models.User, password string) error {
	storedHash := strings.TrimSpace(user.PasswordHash)
	storedPlain := strings.TrimSpace(user.Password)

	if storedHash != "" {
		if strings.HasPrefix(storedHash, "$2") {
			if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) != nil {
				return ErrWrongPassword
			}
			return nil
		}

		digest := sha256.Sum256([]byte(password))
		if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(digest[:])), []byte(strings.ToLower(storedHash))) != 1 {
			return ErrWrongPassword
		}
		return nil
	}

	if storedPlain != "" {
		if subtle.ConstantTimeCompare([]byte(storedPlain), []byte(password)) != 1 {
			return ErrWrongPassword
		}
		return nil
	}

	return ErrNoPasswordSet
}

// loginAttemptWindow tracks recent failed logins per client key.
type loginAttemptWindow struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	failures    map[string][]time.Time
}

func newLoginAttemptWindow(maxAttempts int, window time.Duration) *loginAttemptWindow {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &loginAttemptWindow{
		maxAttempts: maxAttempts,
		window:      window,
		failures:    map[string][]time.Time{},
	}
}

func (w *loginAttemptWindow) exceeded(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.failures[key] = prune(w.failures[key], now, w.window)
	return len(w.failures[key]) >= w.maxAttempts
}

func (w *loginAttemptWindow) record(key string, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.failures[key] = append(prune(w.failures[key], now, w.window), now)
}

func (w *loginAttemptWindow) reset(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.failures, key)
}

func prune(attempts []time.Time, now time.Time, window time.Duration) []time.Time {
	kept := attempts[:0]
	for _, attempt := range attempts {
		if now.Sub(attempt) < window {
			kept = append(kept, attempt)
		}
	}
	return kept
}
