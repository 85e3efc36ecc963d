package service

import (
	"net/http"
	"sort"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/model"
)

// handleGetTransactions returns the caller's incomes and expenses as one
// list sorted by date descending. The type query parameter narrows to one
// side; startDate/endDate narrow the window.
func (s *Service) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	startDate, endDate := dateRangeFromQuery(r)
	typeFilter := r.URL.Query().Get("type")

	transactions := make([]model.Transaction, 0)

	if typeFilter == string(model.TransactionIncome) || typeFilter == "" {
		incomes, err := s.store.ListIncomes(r.Context(), claims.UserID, startDate, endDate)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		for _, income := range incomes {
			transactions = append(transactions, model.Transaction{
				Type:   model.TransactionIncome,
				Income: income,
			})
		}
	}

	if typeFilter == string(model.TransactionExpense) || typeFilter == "" {
		expenses, err := s.store.ListExpenses(r.Context(), claims.UserID, startDate, endDate)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		for _, expense := range expenses {
			transactions = append(transactions, model.Transaction{
				Type:    model.TransactionExpense,
				Expense: expense,
			})
		}
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date().After(transactions[j].Date())
	})
	writeJSON(w, http.StatusOK, transactions)
}
