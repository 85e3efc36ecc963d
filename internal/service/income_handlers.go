package service

import (
	"errors"
	"net/http"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/internal/store"
)

type addIncomeRequest struct {
	Icon   string  `json:"icon"`
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

func (s *Service) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req addIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	date, dateOK := parseDateParam(req.Date)
	if req.Source == "" || req.Amount <= 0 || !dateOK {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	income := &model.Income{
		UserID: claims.UserID,
		Icon:   req.Icon,
		Source: req.Source,
		Amount: req.Amount,
		Date:   date,
	}
	if err := s.store.CreateIncome(r.Context(), income); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, income)
}

func (s *Service) handleGetIncomes(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	startDate, endDate := dateRangeFromQuery(r)

	incomes, err := s.store.ListIncomes(r.Context(), claims.UserID, startDate, endDate)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, incomes)
}

func (s *Service) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	err := s.store.DeleteIncome(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Income not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeMessage(w, http.StatusOK, "Income source deleted successfully")
}

func (s *Service) handleDownloadIncomeExcel(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	incomes, err := s.store.ListIncomes(r.Context(), claims.UserID, nil, nil)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	rows := make([][]any, 0, len(incomes))
	for _, income := range incomes {
		rows = append(rows, []any{income.Source, income.Amount, income.Date.Format("2006-01-02")})
	}
	writeExcel(w, "Income", []string{"Source", "Amount", "Date"}, rows, "income_details.xlsx")
}
