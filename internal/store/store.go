package store

import (
	"context"
	"errors"
	"time"

	"github.com/finlens/backend/internal/model"
)

// ErrNotFound is returned when a record does not exist or is owned by a
// different user.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned by CreateUser when the email is already
// registered.
var ErrEmailTaken = errors.New("email already in use")

// Store defines the interface for all database operations used by the service
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Expense, error)

	// Income operations
	CreateIncome(ctx context.Context, income *model.Income) error
	DeleteIncome(ctx context.Context, userID, incomeID string) error
	ListIncomes(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Income, error)
}

// inRange reports whether date falls inside the optional [startDate, endDate]
// window. Nil bounds are open.
func inRange(date time.Time, startDate, endDate *time.Time) bool {
	if startDate != nil && date.Before(*startDate) {
		return false
	}
	if endDate != nil && date.After(*endDate) {
		return false
	}
	return true
}
