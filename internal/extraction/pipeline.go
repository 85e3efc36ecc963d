package extraction

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/finlens/backend/internal/model"
)

// Store is the persistence surface the pipeline needs for statement rows.
// The application store satisfies it.
type Store interface {
	CreateExpense(ctx context.Context, expense *model.Expense) error
	CreateIncome(ctx context.Context, income *model.Income) error
}

// Config wires the pipeline's collaborators. Recognizer overrides the
// default Tesseract engine, mainly for tests.
type Config struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	AITimeout     time.Duration
	OCRTimeout    time.Duration
	OCRLanguages  []string
	DateOrder     DateOrder
	Recognizer    Recognizer
}

// Pipeline runs documents through text acquisition, parallel candidate
// extraction (AI plus heuristics), reconciliation and materialization.
type Pipeline struct {
	acquirer   *TextAcquirer
	ai         *AIExtractor
	heuristics *HeuristicExtractor
	store      Store
}

func NewPipeline(cfg Config, store Store) *Pipeline {
	ocr := cfg.Recognizer
	if ocr == nil {
		ocr = NewTesseractRecognizer(cfg.OCRLanguages...)
	}
	return &Pipeline{
		acquirer: NewTextAcquirer(ocr, cfg.OCRTimeout),
		ai: NewAIExtractor(AIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.AITimeout,
		}),
		heuristics: NewHeuristicExtractor(cfg.DateOrder),
		store:      store,
	}
}

// ParseReceipt extracts a transaction preview from a receipt document.
// Nothing is persisted; the caller decides whether to save the result.
// AI failures degrade to heuristics-only, acquisition failures are fatal.
func (p *Pipeline) ParseReceipt(ctx context.Context, doc *RawDocument) (ReceiptRecord, error) {
	text, err := p.acquirer.AcquireText(ctx, doc)
	if err != nil {
		return ReceiptRecord{}, err
	}

	var aiFields *CandidateFields
	if p.ai.Available() && strings.TrimSpace(text) != "" {
		fields, aiErr := p.ai.ExtractReceipt(ctx, text)
		if aiErr != nil {
			log.Printf("[pipeline] AI receipt extraction failed, using heuristics only: %v", aiErr)
		} else {
			aiFields = fields
		}
	}

	heuristic := p.heuristics.ExtractReceipt(text)
	return ReconcileReceipt(aiFields, heuristic, text), nil
}

// CreatedItem is one persisted statement row: Doc is a *model.Expense or
// *model.Income.
type CreatedItem struct {
	Type model.TransactionType `json:"type"`
	Doc  any                   `json:"doc"`
}

// StatementResult reports a statement parse: rows persisted, the created
// documents, and candidate rows dropped by validation.
type StatementResult struct {
	Inserted int           `json:"inserted"`
	Items    []CreatedItem `json:"items"`
	Dropped  int           `json:"dropped"`
}

// ParseStatement extracts transaction rows from a statement PDF and persists
// each valid one for userID. AI rows are taken wholesale when the model
// returns any; otherwise the heuristic line parser runs. Rows without a
// positive amount and a strict ISO date are dropped silently.
func (p *Pipeline) ParseStatement(ctx context.Context, userID string, doc *RawDocument) (*StatementResult, error) {
	if !doc.IsPDF() {
		return nil, &Error{
			Code:    ErrInvalidDocument,
			Message: "statement parsing accepts PDF documents only",
			Stage:   "acquire",
		}
	}

	text, err := p.acquirer.AcquireText(ctx, doc)
	if err != nil {
		return nil, err
	}

	return p.materializeRows(ctx, userID, p.extractRows(ctx, text))
}

// extractRows produces statement row candidates: the AI's rows wholesale when
// it returns any, the heuristic line parser otherwise.
func (p *Pipeline) extractRows(ctx context.Context, text string) []RowCandidate {
	if p.ai.Available() && strings.TrimSpace(text) != "" {
		rows, err := p.ai.ExtractStatement(ctx, text)
		if err != nil {
			log.Printf("[pipeline] AI statement extraction failed, using heuristics: %v", err)
		} else if len(rows) > 0 {
			return rows
		}
	}
	return p.heuristics.ExtractStatement(text)
}

// materializeRows persists every valid candidate for userID and counts the
// rest as dropped.
func (p *Pipeline) materializeRows(ctx context.Context, userID string, rows []RowCandidate) (*StatementResult, error) {
	result := &StatementResult{Items: []CreatedItem{}}
	for _, row := range rows {
		date, dateOK := parseISODate(row.DateISO)
		if row.Amount <= 0 || !dateOK {
			result.Dropped++
			continue
		}

		if row.Type == "income" {
			income := &model.Income{
				UserID: userID,
				Source: orDefault(row.Source, DefaultIncomeSource),
				Amount: row.Amount,
				Date:   date,
			}
			if err := p.store.CreateIncome(ctx, income); err != nil {
				return nil, fmt.Errorf("persist income row: %w", err)
			}
			result.Items = append(result.Items, CreatedItem{Type: model.TransactionIncome, Doc: income})
		} else {
			expense := &model.Expense{
				UserID:   userID,
				Category: orDefault(row.Category, DefaultExpenseCategory),
				Amount:   row.Amount,
				Date:     date,
			}
			if err := p.store.CreateExpense(ctx, expense); err != nil {
				return nil, fmt.Errorf("persist expense row: %w", err)
			}
			result.Items = append(result.Items, CreatedItem{Type: model.TransactionExpense, Doc: expense})
		}
		result.Inserted++
	}

	return result, nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
