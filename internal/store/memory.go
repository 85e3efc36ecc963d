package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finlens/backend/internal/model"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	users    map[string]*model.User
	expenses map[string]*model.Expense
	incomes  map[string]*model.Income
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*model.User),
		expenses: make(map[string]*model.Expense),
		incomes:  make(map[string]*model.Income),
	}
}

// User operations

func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

// Expense operations

func (m *MemoryStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expense, ok := m.expenses[expenseID]
	if !ok || expense.UserID != userID {
		return ErrNotFound
	}
	delete(m.expenses, expenseID)
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expenses := make([]*model.Expense, 0)
	for _, expense := range m.expenses {
		if expense.UserID != userID {
			continue
		}
		if !inRange(expense.Date, startDate, endDate) {
			continue
		}
		expenses = append(expenses, expense)
	}

	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
	return expenses, nil
}

// Income operations

func (m *MemoryStore) CreateIncome(ctx context.Context, income *model.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	m.incomes[income.ID] = income
	return nil
}

func (m *MemoryStore) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	income, ok := m.incomes[incomeID]
	if !ok || income.UserID != userID {
		return ErrNotFound
	}
	delete(m.incomes, incomeID)
	return nil
}

func (m *MemoryStore) ListIncomes(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Income, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	incomes := make([]*model.Income, 0)
	for _, income := range m.incomes {
		if income.UserID != userID {
			continue
		}
		if !inRange(income.Date, startDate, endDate) {
			continue
		}
		incomes = append(incomes, income)
	}

	sort.Slice(incomes, func(i, j int) bool {
		return incomes[i].Date.After(incomes[j].Date)
	})
	return incomes, nil
}
