// Package service exposes the HTTP API: auth, expense/income CRUD, document
// parsing and merged transaction listings.
package service

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/extraction"
	"github.com/finlens/backend/internal/store"
)

// Service owns the API handlers and their collaborators.
type Service struct {
	store       store.Store
	pipeline    *extraction.Pipeline
	issuer      *auth.TokenIssuer
	revocations *auth.RevocationList
}

func New(st store.Store, pipeline *extraction.Pipeline, issuer *auth.TokenIssuer, revocations *auth.RevocationList) *Service {
	return &Service{
		store:       st,
		pipeline:    pipeline,
		issuer:      issuer,
		revocations: revocations,
	}
}

// Routes builds the full API router. Everything under /api/v1 except
// register and login requires a valid token.
func (s *Service) Routes() http.Handler {
	mw := auth.NewMiddleware(s.issuer, s.revocations)
	protected := func(h http.HandlerFunc) http.Handler {
		return mw.RequireAuth(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.Handle("GET /api/v1/auth/me", protected(s.handleGetUserInfo))
	// Logout stays outside the auth guard so an expired token can still be
	// revoked and its cookie cleared.
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)

	// Expenses
	mux.Handle("POST /api/v1/expense/add", protected(s.handleAddExpense))
	mux.Handle("GET /api/v1/expense/get", protected(s.handleGetExpenses))
	mux.Handle("GET /api/v1/expense/downloadexcel", protected(s.handleDownloadExpenseExcel))
	mux.Handle("DELETE /api/v1/expense/{id}", protected(s.handleDeleteExpense))
	mux.Handle("POST /api/v1/expense/parse-receipt", protected(s.handleParseReceipt))

	// Income
	mux.Handle("POST /api/v1/income/add", protected(s.handleAddIncome))
	mux.Handle("GET /api/v1/income/get", protected(s.handleGetIncomes))
	mux.Handle("GET /api/v1/income/downloadexcel", protected(s.handleDownloadIncomeExcel))
	mux.Handle("DELETE /api/v1/income/{id}", protected(s.handleDeleteIncome))

	// Transactions
	mux.Handle("POST /api/v1/transactions/parse-pdf", protected(s.handleParseStatement))
	mux.Handle("GET /api/v1/transactions", protected(s.handleGetTransactions))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseDateParam accepts ISO dates with or without a time component.
func parseDateParam(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// dateRangeFromQuery reads optional startDate/endDate query parameters.
// The end bound is widened to the end of that day so a bare date includes
// records dated within it.
func dateRangeFromQuery(r *http.Request) (startDate, endDate *time.Time) {
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		if t, ok := parseDateParam(raw); ok {
			startDate = &t
		}
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		if t, ok := parseDateParam(raw); ok {
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			endDate = &end
		}
	}
	return startDate, endDate
}
