// Package model defines the plain records stored and served by the backend.
package model

import (
	"encoding/json"
	"time"
)

// Expense is a single spend record owned by a user.
type Expense struct {
	ID       string    `json:"id" firestore:"ID"`
	UserID   string    `json:"userId" firestore:"UserID"`
	Icon     string    `json:"icon,omitempty" firestore:"Icon"`
	Category string    `json:"category" firestore:"Category"`
	Amount   float64   `json:"amount" firestore:"Amount"`
	Date     time.Time `json:"date" firestore:"Date"`
}

// Income is a single earning record owned by a user.
type Income struct {
	ID     string    `json:"id" firestore:"ID"`
	UserID string    `json:"userId" firestore:"UserID"`
	Icon   string    `json:"icon,omitempty" firestore:"Icon"`
	Source string    `json:"source" firestore:"Source"`
	Amount float64   `json:"amount" firestore:"Amount"`
	Date   time.Time `json:"date" firestore:"Date"`
}

// User is a registered account. PasswordHash never serializes to JSON.
type User struct {
	ID              string    `json:"id" firestore:"ID"`
	FirstName       string    `json:"firstName" firestore:"FirstName"`
	LastName        string    `json:"lastName" firestore:"LastName"`
	Email           string    `json:"email" firestore:"Email"`
	Phone           string    `json:"phone" firestore:"Phone"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty" firestore:"ProfileImageURL"`
	PasswordHash    string    `json:"-" firestore:"PasswordHash"`
	CreatedAt       time.Time `json:"createdAt" firestore:"CreatedAt"`
}

// TransactionType distinguishes income from expense rows in merged listings
// and in statement imports.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a merged listing entry: exactly one of Expense or Income is
// set, matching Type.
type Transaction struct {
	Type    TransactionType `json:"type"`
	Expense *Expense        `json:"-"`
	Income  *Income         `json:"-"`
}

// MarshalJSON flattens the underlying record's fields alongside the type
// tag, so merged listings serialize the same shape as the per-type lists.
func (t Transaction) MarshalJSON() ([]byte, error) {
	if t.Expense != nil {
		return json.Marshal(struct {
			Type TransactionType `json:"type"`
			*Expense
		}{t.Type, t.Expense})
	}
	if t.Income != nil {
		return json.Marshal(struct {
			Type TransactionType `json:"type"`
			*Income
		}{t.Type, t.Income})
	}
	return json.Marshal(struct {
		Type TransactionType `json:"type"`
	}{t.Type})
}

// Date returns the underlying record's date for sorting.
func (t Transaction) Date() time.Time {
	if t.Expense != nil {
		return t.Expense.Date
	}
	if t.Income != nil {
		return t.Income.Date
	}
	return time.Time{}
}
