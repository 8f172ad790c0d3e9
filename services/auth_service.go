package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fintrack/finance-tracker/auth"
	"github.com/fintrack/finance-tracker/internal/observability"
	"github.com/fintrack/finance-tracker/models"
	"github.com/fintrack/finance-tracker/repositories"
	"go.uber.org/zap"
)

// PasswordHasher hashes and verifies passwords; auth.HashPool implements it.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hashed string) (bool, error)
}

// TokenIssuer signs identity tokens; auth.TokenCodec implements it.
type TokenIssuer interface {
	Issue(subject string, now time.Time) (*auth.IdentityToken, error)
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Currency  string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token *auth.IdentityToken
	User  *models.User
}

// AuthServiceOptions tunes AuthService behaviour.
type AuthServiceOptions struct {
	// EqualizeLoginTiming runs a bcrypt verify against a dummy hash when the
	// email is unknown so both failure paths cost the same.
	EqualizeLoginTiming bool

	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// AuthService registers users and exchanges credentials for identity tokens.
// It holds no per-request state.
type AuthService struct {
	users   repositories.UserRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics *observability.AuthMetrics
	logger  *zap.Logger

	equalizeTiming bool
	now            func() time.Time

	dummyMu   sync.Mutex
	dummyHash string
}

// dummyPassword is hashed once to give unknown-email logins a real bcrypt
// verification to spend.
const dummyPassword = "timing-equalization-placeholder"

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	metrics *observability.AuthMetrics,
	logger *zap.Logger,
	opts AuthServiceOptions,
) *AuthService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &AuthService{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		metrics:        metrics,
		logger:         logger,
		equalizeTiming: opts.EqualizeLoginTiming,
		now:            now,
	}
	if s.equalizeTiming {
		s.dummy()
	}
	return s
}

// Register creates an active account. The email is stored exactly as given.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		s.metrics.ObserveRegister(observability.OutcomeInvalid)
		return nil, ErrInvalidInput.WithDetail("reason", "email and password are required")
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		s.metrics.ObserveRegister(observability.OutcomeError)
		return nil, ErrDatabaseError.Wrap(err)
	}
	if exists {
		s.metrics.ObserveRegister(observability.OutcomeDuplicate)
		return nil, ErrDuplicateEmail
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		s.metrics.ObserveRegister(observability.OutcomeError)
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(in.Email, hashed, in.FirstName, in.LastName, in.Currency)
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can win between the existence check and the insert.
		if errors.Is(err, repositories.ErrDuplicate) {
			s.metrics.ObserveRegister(observability.OutcomeDuplicate)
			return nil, ErrDuplicateEmail.Wrap(err)
		}
		s.metrics.ObserveRegister(observability.OutcomeError)
		return nil, ErrDatabaseError.Wrap(err)
	}

	s.metrics.ObserveRegister(observability.OutcomeSuccess)
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies the credentials and issues a token whose subject is the
// stored email. Unknown email and wrong password stay distinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			if s.equalizeTiming {
				s.burnVerify(ctx, password)
			}
			s.metrics.ObserveLogin(observability.OutcomeUserNotFound)
			return nil, ErrUserNotFound
		}
		s.metrics.ObserveLogin(observability.OutcomeError)
		return nil, ErrDatabaseError.Wrap(err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		s.metrics.ObserveLogin(observability.OutcomeError)
		if errors.Is(err, auth.ErrInvalidHashFormat) {
			s.logger.Error("stored password hash is unreadable", zap.String("user_id", user.ID.String()))
		}
		return nil, WrapInternal("failed to verify password", err)
	}
	if !ok {
		s.metrics.ObserveLogin(observability.OutcomeInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, s.now())
	if err != nil {
		s.metrics.ObserveLogin(observability.OutcomeError)
		return nil, WrapInternal("failed to issue token", err)
	}

	s.metrics.ObserveLogin(observability.OutcomeSuccess)
	s.logger.Debug("login succeeded", zap.String("user_id", user.ID.String()))
	return &LoginResult{Token: token, User: user}, nil
}

// dummy returns the equalization hash, building it when absent. The hash is
// never tied to a request context, so a cancelled login cannot leave it unset.
func (s *AuthService) dummy() string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()
	if s.dummyHash == "" {
		hashed, err := s.hasher.Hash(context.Background(), dummyPassword)
		if err != nil {
			s.logger.Warn("failed to prepare dummy hash", zap.Error(err))
			return ""
		}
		s.dummyHash = hashed
	}
	return s.dummyHash
}

// burnVerify spends one bcrypt verification at the configured cost.
func (s *AuthService) burnVerify(ctx context.Context, password string) {
	hashed := s.dummy()
	if hashed == "" {
		return
	}
	_, _ = s.hasher.Verify(ctx, password, hashed)
}
