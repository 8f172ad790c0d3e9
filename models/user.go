package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is assigned when registration omits a currency
const DefaultCurrency = "USD"

// User represents a registered account. Email is the unique identity key and
// the subject of every token issued for the account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // never serialized
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Currency     string    `json:"currency" db:"currency"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NewUser creates an active user; an empty currency becomes DefaultCurrency
func NewUser(email, passwordHash, firstName, lastName, currency string) *User {
	if currency == "" {
		currency = DefaultCurrency
	}
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Currency:     currency,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// String omits the password hash so accidental %v logging stays safe
func (u *User) String() string {
	return "User{" + u.ID.String() + " " + u.Email + "}"
}
