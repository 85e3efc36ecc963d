package service

import (
	"io"
	"log"
	"net/http"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/extraction"
)

const maxUploadBytes = 32 << 20 // 32MB

// receiptParseResponse mirrors the extraction preview: amount serializes as
// a number when present and as "" when absent.
type receiptParseResponse struct {
	Amount   any    `json:"amount"`
	DateISO  string `json:"dateISO"`
	Category string `json:"category"`
	RawText  string `json:"rawText"`
}

// handleParseReceipt extracts a transaction preview from an uploaded receipt
// (multipart field "receipt"). Nothing is persisted.
func (s *Service) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	doc, ok := readUpload(w, r, "receipt")
	if !ok {
		return
	}
	if !extraction.AcceptedReceiptType(doc.MediaType) {
		writeMessage(w, http.StatusBadRequest, "Invalid file type. Only JPEG, JPG, PNG, HEIC, and PDF are allowed.")
		return
	}

	record, err := s.pipeline.ParseReceipt(r.Context(), doc)
	if err != nil {
		log.Printf("[service] parse receipt failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to parse receipt")
		return
	}

	resp := receiptParseResponse{
		Amount:   "",
		DateISO:  record.DateISO,
		Category: record.Category,
		RawText:  record.RawText,
	}
	if record.Amount != nil {
		resp.Amount = *record.Amount
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleParseStatement imports transaction rows from an uploaded statement
// PDF (multipart field "file") into the caller's account.
func (s *Service) handleParseStatement(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	doc, ok := readUpload(w, r, "file")
	if !ok {
		return
	}
	if !doc.IsPDF() {
		writeMessage(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	result, err := s.pipeline.ParseStatement(r.Context(), claims.UserID, doc)
	if err != nil {
		log.Printf("[service] parse statement failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to parse transactions PDF")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readUpload pulls the named multipart file into a RawDocument. It writes
// the error response itself and reports success via the bool.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (*extraction.RawDocument, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}

	return &extraction.RawDocument{
		Data:      data,
		MediaType: extraction.MediaType(header.Header.Get("Content-Type")),
		Filename:  header.Filename,
	}, true
}
