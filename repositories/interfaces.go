package repositories

import (
	"context"
	"errors"

	"github.com/fintrack/finance-tracker/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository is the user directory consulted by registration, login and
// the profile endpoints. Email matching is exact.
type UserRepository interface {
	// Create creates a new user; ErrDuplicate when the email is taken
	Create(ctx context.Context, user *models.User) error

	// GetByEmail retrieves a user by email; ErrNotFound when absent
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmail reports whether a user with this email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update updates profile fields of a user
	Update(ctx context.Context, user *models.User) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users UserRepository
}
