package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/extraction"
	"github.com/finlens/backend/internal/store"
)

type stubRecognizer struct {
	text string
}

func (s *stubRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	return s.text, nil
}

type testEnv struct {
	handler http.Handler
	store   *store.MemoryStore
	ocr     *stubRecognizer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	memStore := store.NewMemoryStore()
	ocr := &stubRecognizer{}
	pipeline := extraction.NewPipeline(extraction.Config{Recognizer: ocr}, memStore)
	issuer := auth.NewTokenIssuer([]byte("test-secret"))
	revocations := auth.NewRevocationList()

	svc := New(memStore, pipeline, issuer, revocations)
	return &testEnv{handler: svc.Routes(), store: memStore, ocr: ocr}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     email,
		"phone":     "555-0100",
		"password":  "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func multipartUpload(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	token := env.register(t, "ada@example.com")

	// Duplicate registration rejected.
	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Ada", "lastName": "L", "email": "ada@example.com",
		"phone": "555", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing fields rejected.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "x@y.z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Login with correct credentials.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Login with wrong password.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Authenticated profile fetch.
	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
	assert.NotContains(t, rec.Body.String(), "hunter22")

	// Logout revokes the token.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpenseCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	// Unauthenticated access rejected.
	rec := env.do(t, http.MethodGet, "/api/v1/expense/get", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing fields.
	rec = env.do(t, http.MethodPost, "/api/v1/expense/add", token, map[string]any{"category": "Food"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Add two expenses.
	rec = env.do(t, http.MethodPost, "/api/v1/expense/add", token, map[string]any{
		"category": "Food", "amount": 12.50, "date": "2024-01-05",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = env.do(t, http.MethodPost, "/api/v1/expense/add", token, map[string]any{
		"category": "Transport", "amount": 30.00, "date": "2024-02-10",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// List sorted date descending.
	rec = env.do(t, http.MethodGet, "/api/v1/expense/get", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []struct {
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Transport", listed[0].Category)

	// Date window filter.
	rec = env.do(t, http.MethodGet, "/api/v1/expense/get?startDate=2024-01-01&endDate=2024-01-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Food", listed[0].Category)

	// Delete.
	rec = env.do(t, http.MethodDelete, "/api/v1/expense/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/expense/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionsMergedListing(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/income/add", token, map[string]any{
		"source": "Salary", "amount": 950.0, "date": "2024-01-03",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, "/api/v1/expense/add", token, map[string]any{
		"category": "Food", "amount": 12.5, "date": "2024-01-05",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var merged []struct {
		Type     string  `json:"type"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Source   string  `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merged))
	require.Len(t, merged, 2)
	assert.Equal(t, "expense", merged[0].Type)
	assert.Equal(t, "Food", merged[0].Category)
	assert.Equal(t, "income", merged[1].Type)
	assert.Equal(t, "Salary", merged[1].Source)

	rec = env.do(t, http.MethodGet, "/api/v1/transactions?type=income", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merged))
	require.Len(t, merged, 1)
	assert.Equal(t, "income", merged[0].Type)
}

func TestParseReceiptEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	env.ocr.text = "SUPERMARKET\nGRAND TOTAL $45.00\n12/03/2024"

	body, contentType := multipartUpload(t, "receipt", "receipt.png", "image/png", []byte("fake image bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expense/parse-receipt", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Amount   json.Number `json:"amount"`
		DateISO  string      `json:"dateISO"`
		Category string      `json:"category"`
		RawText  string      `json:"rawText"`
	}
	decoder := json.NewDecoder(strings.NewReader(rec.Body.String()))
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(&resp))

	assert.Equal(t, "45", resp.Amount.String())
	assert.Equal(t, "2024-03-12", resp.DateISO)
	assert.Equal(t, "Food", resp.Category)
	assert.NotEmpty(t, resp.RawText)

	// Nothing persisted by a receipt preview.
	listRec := env.do(t, http.MethodGet, "/api/v1/expense/get", token, nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Equal(t, "[]\n", listRec.Body.String())
}

func TestParseReceiptAbsentAmountSerializesEmpty(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	env.ocr.text = "no numbers here"

	body, contentType := multipartUpload(t, "receipt", "r.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expense/parse-receipt", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(), `"amount":""`)
	assert.Contains(t, rec.Body.String(), `"category":"Others"`)
}

func TestParseReceiptRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	body, contentType := multipartUpload(t, "receipt", "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expense/parse-receipt", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseStatementRejectsNonPDF(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	body, contentType := multipartUpload(t, "file", "img.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/parse-pdf", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only PDF files are allowed")
}

func TestParseStatementMissingFile(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/transactions/parse-pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")
}

func TestDownloadExpenseExcel(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/expense/add", token, map[string]any{
		"category": "Food", "amount": 12.5, "date": "2024-01-05",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/expense/downloadexcel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "expense_details.xlsx")

	workbook, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Expense")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Category", "Amount", "Date"}, rows[0])
	assert.Equal(t, "Food", rows[1][0])
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
