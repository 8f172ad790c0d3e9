package handlers

import (
	"context"
	"net/http"

	"github.com/fintrack/finance-tracker/middleware"
	"github.com/fintrack/finance-tracker/models"
	"github.com/fintrack/finance-tracker/services"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, email string, update services.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, email, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// verifierFunc adapts a function to BearerVerifier
type verifierFunc func(r *http.Request) (*middleware.Principal, error)

func (f verifierFunc) Verify(r *http.Request) (*middleware.Principal, error) {
	return f(r)
}
