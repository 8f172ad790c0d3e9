package services

import (
	"context"
	"errors"

	"github.com/fintrack/finance-tracker/models"
	"github.com/fintrack/finance-tracker/repositories"
	"go.uber.org/zap"
)

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Currency  string
}

// UserService serves the authenticated user's own profile. Callers pass
// the principal subject, never a token.
type UserService struct {
	users     repositories.UserRepository
	txManager repositories.TransactionManager
	logger    *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, txManager repositories.TransactionManager, logger *zap.Logger) *UserService {
	return &UserService{
		users:     users,
		txManager: txManager,
		logger:    logger,
	}
}

// GetProfile returns the user whose email is the principal subject
func (s *UserService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrDatabaseError.Wrap(err)
	}
	return user, nil
}

// UpdateProfile replaces first name, last name and currency. An empty
// currency keeps the stored one.
func (s *UserService) UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*models.User, error) {
	return WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.User, error) {
		users := s.users.WithTx(tx)

		user, err := users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, ErrDatabaseError.Wrap(err)
		}

		user.FirstName = update.FirstName
		user.LastName = update.LastName
		if update.Currency != "" {
			user.Currency = update.Currency
		}

		if err := users.Update(ctx, user); err != nil {
			return nil, ErrDatabaseError.Wrap(err)
		}

		s.logger.Info("profile updated", zap.String("user_id", user.ID.String()))
		return user, nil
	})
}
