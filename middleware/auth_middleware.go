package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fintrack/finance-tracker/auth"
	"github.com/fintrack/finance-tracker/internal/observability"
	"github.com/fintrack/finance-tracker/services"
	"github.com/fintrack/finance-tracker/utils"
	"go.uber.org/zap"
)

// TokenVerifier verifies a compact token and returns its subject;
// auth.TokenCodec implements it.
type TokenVerifier interface {
	Verify(token string, now time.Time) (string, error)
}

// AuthMiddleware enforces the route policy on every request
type AuthMiddleware struct {
	policy   *RoutePolicy
	verifier TokenVerifier
	now      func() time.Time
	metrics  *observability.AuthMetrics
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(policy *RoutePolicy, verifier TokenVerifier, metrics *observability.AuthMetrics, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		policy:   policy,
		verifier: verifier,
		now:      time.Now,
		metrics:  metrics,
		logger:   logger,
	}
}

// WithClock replaces the time source used for expiry checks
func (m *AuthMiddleware) WithClock(now func() time.Time) *AuthMiddleware {
	m.now = now
	return m
}

// Authenticate consults the route policy and forwards public requests
// untouched. Any other request must carry a valid bearer token; its subject
// becomes the request Principal. Failures end with 401 and never reach next.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.Match(r.Method, r.URL.Path) == RequirementPublic {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.Verify(r)
		if err != nil {
			m.logger.Warn("authentication failed",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, services.GetErrorMessage(err))
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("sub", principal.Subject))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// Verify extracts and verifies the bearer token of r. Errors are
// services.ErrMissingToken, services.ErrTokenExpired or
// services.ErrInvalidToken, the latter two wrapping the codec error.
func (m *AuthMiddleware) Verify(r *http.Request) (*Principal, error) {
	token := extractBearerToken(r)
	if token == "" {
		m.metrics.ObserveTokenVerification("missing")
		return nil, services.ErrMissingToken
	}

	subject, err := m.verifier.Verify(token, m.now())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpired):
			m.metrics.ObserveTokenVerification("expired")
			return nil, services.ErrTokenExpired.Wrap(err)
		case errors.Is(err, auth.ErrBadSignature):
			m.metrics.ObserveTokenVerification("bad_signature")
		default:
			m.metrics.ObserveTokenVerification("malformed")
		}
		return nil, services.ErrInvalidToken.Wrap(err)
	}

	m.metrics.ObserveTokenVerification("valid")
	return &Principal{Subject: subject}, nil
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
