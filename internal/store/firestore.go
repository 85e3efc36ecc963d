package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/finlens/backend/internal/model"
)

const (
	usersCollection    = "users"
	expensesCollection = "expenses"
	incomesCollection  = "incomes"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// User operations

func (s *FirestoreStore) CreateUser(ctx context.Context, user *model.User) error {
	// NOTE: Field names must match Go struct field names (PascalCase) as
	// that's how Firestore serializes the structs
	existing, err := s.client.Collection(usersCollection).
		Where("Email", "==", user.Email).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return fmt.Errorf("failed to check existing email: %w", err)
	}
	if len(existing) > 0 {
		return ErrEmailTaken
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err = s.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	return err
}

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	docs, err := s.client.Collection(usersCollection).
		Where("Email", "==", email).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	var user model.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

// Expense operations

func (s *FirestoreStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	_, err := s.client.Collection(expensesCollection).Doc(expense.ID).Set(ctx, expense)
	return err
}

func (s *FirestoreStore) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	ref := s.client.Collection(expensesCollection).Doc(expenseID)
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get expense: %w", err)
	}

	var expense model.Expense
	if err := doc.DataTo(&expense); err != nil {
		return fmt.Errorf("failed to parse expense: %w", err)
	}
	if expense.UserID != userID {
		return ErrNotFound
	}

	_, err = ref.Delete(ctx)
	return err
}

func (s *FirestoreStore) ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Expense, error) {
	query := s.client.Collection(expensesCollection).
		Where("UserID", "==", userID)
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}
	query = query.OrderBy("Date", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]*model.Expense, 0, len(docs))
	for _, doc := range docs {
		var expense model.Expense
		if err := doc.DataTo(&expense); err != nil {
			return nil, fmt.Errorf("failed to parse expense: %w", err)
		}
		expenses = append(expenses, &expense)
	}
	return expenses, nil
}

// Income operations

func (s *FirestoreStore) CreateIncome(ctx context.Context, income *model.Income) error {
	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	_, err := s.client.Collection(incomesCollection).Doc(income.ID).Set(ctx, income)
	return err
}

func (s *FirestoreStore) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	ref := s.client.Collection(incomesCollection).Doc(incomeID)
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get income: %w", err)
	}

	var income model.Income
	if err := doc.DataTo(&income); err != nil {
		return fmt.Errorf("failed to parse income: %w", err)
	}
	if income.UserID != userID {
		return ErrNotFound
	}

	_, err = ref.Delete(ctx)
	return err
}

func (s *FirestoreStore) ListIncomes(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Income, error) {
	query := s.client.Collection(incomesCollection).
		Where("UserID", "==", userID)
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}
	query = query.OrderBy("Date", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}

	incomes := make([]*model.Income, 0, len(docs))
	for _, doc := range docs {
		var income model.Income
		if err := doc.DataTo(&income); err != nil {
			return nil, fmt.Errorf("failed to parse income: %w", err)
		}
		incomes = append(incomes, &income)
	}
	return incomes, nil
}
