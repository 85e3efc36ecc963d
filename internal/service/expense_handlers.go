package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/internal/store"
)

type addExpenseRequest struct {
	Icon     string  `json:"icon"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

func (s *Service) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req addExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	date, dateOK := parseDateParam(req.Date)
	if req.Category == "" || req.Amount <= 0 || !dateOK {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	expense := &model.Expense{
		UserID:   claims.UserID,
		Icon:     req.Icon,
		Category: req.Category,
		Amount:   req.Amount,
		Date:     date,
	}
	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Service) handleGetExpenses(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	startDate, endDate := dateRangeFromQuery(r)

	expenses, err := s.store.ListExpenses(r.Context(), claims.UserID, startDate, endDate)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Service) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	err := s.store.DeleteExpense(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Expense not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeMessage(w, http.StatusOK, "Expense source deleted successfully")
}

func (s *Service) handleDownloadExpenseExcel(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	expenses, err := s.store.ListExpenses(r.Context(), claims.UserID, nil, nil)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	rows := make([][]any, 0, len(expenses))
	for _, expense := range expenses {
		rows = append(rows, []any{expense.Category, expense.Amount, expense.Date.Format("2006-01-02")})
	}
	writeExcel(w, "Expense", []string{"Category", "Amount", "Date"}, rows, "expense_details.xlsx")
}

// writeExcel streams a single-sheet workbook straight to the response.
func writeExcel(w http.ResponseWriter, sheet string, header []string, rows [][]any, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		// Headers are already sent; nothing useful left to report.
		return
	}
}
