package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const invalidCredentialsMessage = "invalid email or password"

// LoginLimiter caps login attempts per email.
type LoginLimiter interface {
	Attempt(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	limiter    LoginLimiter
	logger     *zap.Logger
	metrics    *observability.Metrics
	bcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
// Limiter and Metrics may be nil.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Limiter  LoginLimiter
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.Tokens,
		limiter:    deps.Limiter,
		logger:     logger,
		metrics:    deps.Metrics,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new account and issues its first token.
// email is expected to be normalized already.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, domain.SessionToken, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.SessionToken{}, emailTaken()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.SessionToken{}, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.SessionToken{}, passwordTooLong()
		}
		return nil, domain.SessionToken{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, domain.SessionToken{}, emailTaken()
		}
		return nil, domain.SessionToken{}, apperrors.NewInternalError(err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, domain.SessionToken{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, token, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.SessionToken, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Attempt(ctx, email)
		if err != nil {
			s.logger.Warn("login throttle unavailable", zap.Error(err))
		}
		if !allowed {
			s.metrics.RecordLogin("throttled")
			return nil, domain.SessionToken{}, apperrors.NewTooManyAttempts("too many failed login attempts; try again later")
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.SessionToken{}, apperrors.NewInternalError(err)
		}
		// Spend the same bcrypt work as a real comparison.
		_ = auth.ComparePassword(s.placeholderHash(), password)
		return nil, domain.SessionToken{}, s.loginFailed()
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.SessionToken{}, apperrors.NewInternalError(err)
		}
		return nil, domain.SessionToken{}, s.loginFailed()
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, domain.SessionToken{}, apperrors.NewInternalError(err)
	}
	user, err = s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, domain.SessionToken{}, apperrors.NewInternalError(err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("failed to reset login throttle", zap.Error(err))
		}
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, domain.SessionToken{}, err
	}
	s.metrics.RecordLogin("success")
	return user, token, nil
}

// Profile returns the stored user for an authenticated caller.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (domain.SessionToken, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return domain.SessionToken{}, apperrors.NewInternalError(err)
	}
	return domain.SessionToken{Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) loginFailed() error {
	s.metrics.RecordLogin("failure")
	return apperrors.NewUnauthorized(invalidCredentialsMessage)
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("placeholder-password", s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func passwordTooLong() error {
	return apperrors.NewValidationError("request validation failed", map[string]any{
		"password": fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes),
	})
}

func emailTaken() error {
	return apperrors.NewConflict("email already registered", map[string]any{"email": "is already registered"})
}
