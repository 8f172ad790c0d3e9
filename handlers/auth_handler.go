package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fintrack/finance-tracker/middleware"
	"github.com/fintrack/finance-tracker/models"
	"github.com/fintrack/finance-tracker/services"
	"github.com/fintrack/finance-tracker/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Currency  string `json:"currency,omitempty" validate:"omitempty,currency"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Currency  string    `json:"currency"`
	CreatedAt string    `json:"createdAt,omitempty"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Currency  string `json:"currency"`
	ExpiresAt string `json:"expiresAt"`
}

// AuthService defines the credential operations the handler needs
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

// BearerVerifier verifies the bearer token of a request;
// middleware.AuthMiddleware implements it.
type BearerVerifier interface {
	Verify(r *http.Request) (*middleware.Principal, error)
}

// AuthHandler handles registration, login and token validation
type AuthHandler struct {
	authService AuthService
	verifier    BearerVerifier
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil verifier makes
// GET /auth/validate answer 200 without looking at the request.
func NewAuthHandler(authService AuthService, verifier BearerVerifier, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		verifier:    verifier,
		logger:      logger,
	}
}

// HandleRegister handles POST /auth/register. Every failure is a 400.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.authService.Register(ctx, services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Currency:  req.Currency,
	})
	if err != nil {
		if services.IsConflictError(err) || services.IsValidationError(err) {
			_ = utils.WriteBadRequest(w, services.GetErrorMessage(err), nil)
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("registration completed",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("user_id", user.ID.String()))

	_ = utils.WriteCreated(w, toUserResponse(user), "User registered successfully")
}

// HandleLogin handles POST /auth/login. Credential failures are 401 with
// the reason ("User not found" or "Invalid credentials").
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if services.IsNotFoundError(err) || services.IsUnauthorizedError(err) {
			h.logger.Info("login rejected",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.String("reason", services.GetErrorMessage(err)))
			_ = utils.WriteUnauthorized(w, services.GetErrorMessage(err))
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOKMessage(w, LoginResponse{
		Token:     result.Token.Token,
		Email:     result.User.Email,
		FirstName: result.User.FirstName,
		LastName:  result.User.LastName,
		Currency:  result.User.Currency,
		ExpiresAt: result.Token.ExpiresAt.UTC().Format(time.RFC3339),
	}, "Login successful")
}

// HandleValidate handles GET /auth/validate
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if h.verifier != nil {
		if _, err := h.verifier.Verify(r); err != nil {
			_ = utils.WriteUnauthorized(w, services.GetErrorMessage(err))
			return
		}
	}
	_ = utils.WriteOKMessage(w, "Valid token", "Token is valid")
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Currency:  u.Currency,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
