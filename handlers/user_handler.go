package handlers

import (
	"context"
	"net/http"

	"github.com/fintrack/finance-tracker/middleware"
	"github.com/fintrack/finance-tracker/models"
	"github.com/fintrack/finance-tracker/services"
	"github.com/fintrack/finance-tracker/utils"
	"go.uber.org/zap"
)

// UpdateProfileRequest is the body of PUT /users/profile
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Currency  string `json:"currency,omitempty" validate:"omitempty,currency"`
}

// UserService defines the profile operations the handler needs
type UserService interface {
	GetProfile(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, update services.ProfileUpdate) (*models.User, error)
}

// UserHandler serves the authenticated user's profile
type UserHandler struct {
	userService UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// HandleGetProfile handles GET /users/profile
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), principal.Subject)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOKMessage(w, toUserResponse(user), "Profile retrieved successfully")
}

// HandleUpdateProfile handles PUT /users/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), principal.Subject, services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Currency:  req.Currency,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOKMessage(w, toUserResponse(user), "Profile updated successfully")
}
