package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAIBaseURL = "https://api.openai.com/v1"
	defaultAIModel   = "gpt-4o-mini"
	defaultAITimeout = 30 * time.Second
)

const receiptSystemPrompt = "You extract structured data from noisy receipt text."

const statementSystemPrompt = "You extract structured transactions from tabular statement text."

// AIExtractor calls an OpenAI-compatible chat completions endpoint to pull
// structured fields out of raw document text. Every failure here is soft:
// callers fall back to heuristics.
type AIExtractor struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	retryCfg   RetryConfig
}

// AIConfig configures the extractor. Zero values fall back to the OpenAI
// public endpoint, gpt-4o-mini and a 30s timeout.
type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func NewAIExtractor(cfg AIConfig) *AIExtractor {
	if cfg.Model == "" {
		cfg.Model = defaultAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAITimeout
	}
	return &AIExtractor{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryCfg:   DefaultAIRetryConfig,
	}
}

// Available reports whether the extractor is configured with credentials.
func (c *AIExtractor) Available() bool {
	return c != nil && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractReceipt asks the model for amount/dateISO/category from receipt
// text. Fields the model omits or returns in an invalid form are absent in
// the result, never defaulted here.
func (c *AIExtractor) ExtractReceipt(ctx context.Context, text string) (*CandidateFields, error) {
	prompt := "Extract the following fields from this receipt text. Return strict JSON with keys amount (number), dateISO (YYYY-MM-DD), category (string).\nText:\n" + text

	content, err := c.complete(ctx, receiptSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	payload, ok := sliceJSON(content, '{', '}')
	if !ok {
		return nil, &Error{
			Code:    ErrAIBadResponse,
			Message: "model response contains no JSON object",
			Stage:   "ai",
		}
	}

	var parsed struct {
		Amount   any    `json:"amount"`
		DateISO  string `json:"dateISO"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &Error{
			Code:    ErrAIBadResponse,
			Message: "model response is not valid JSON",
			Stage:   "ai",
			Cause:   err,
		}
	}

	fields := &CandidateFields{Category: strings.TrimSpace(parsed.Category)}
	if v, ok := coerceNumber(parsed.Amount); ok {
		fields.Amount = &v
	}
	if validISODate(parsed.DateISO) {
		fields.DateISO = parsed.DateISO
	}
	return fields, nil
}

// ExtractStatement asks the model to parse statement text into transaction
// rows. Row-level validation (positive amount, strict date) happens at
// materialization, not here.
func (c *AIExtractor) ExtractStatement(ctx context.Context, text string) ([]RowCandidate, error) {
	prompt := `You will receive raw text extracted from a tabular bank statement/transactions PDF. Parse rows and return strict JSON array, where each item has: { type: "income"|"expense", category: string (for expenses) or source: string (for income), amount: number, dateISO: YYYY-MM-DD }. Ensure valid JSON only. Text:` + "\n" + text

	content, err := c.complete(ctx, statementSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	payload, ok := sliceJSON(content, '[', ']')
	if !ok {
		return nil, &Error{
			Code:    ErrAIBadResponse,
			Message: "model response contains no JSON array",
			Stage:   "ai",
		}
	}

	var parsed []struct {
		Type     string `json:"type"`
		Amount   any    `json:"amount"`
		DateISO  string `json:"dateISO"`
		Category string `json:"category"`
		Source   string `json:"source"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &Error{
			Code:    ErrAIBadResponse,
			Message: "model response is not valid JSON",
			Stage:   "ai",
			Cause:   err,
		}
	}

	rows := make([]RowCandidate, 0, len(parsed))
	for _, item := range parsed {
		row := RowCandidate{
			DateISO:  item.DateISO,
			Category: strings.TrimSpace(item.Category),
			Source:   strings.TrimSpace(item.Source),
		}
		if strings.ToLower(strings.TrimSpace(item.Type)) == "income" {
			row.Type = "income"
		} else {
			row.Type = "expense"
		}
		if v, ok := coerceNumber(item.Amount); ok {
			row.Amount = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *AIExtractor) complete(ctx context.Context, system, user string) (string, error) {
	return WithRetry(ctx, c.retryCfg, func(ctx context.Context) (string, error) {
		return c.completeOnce(ctx, system, user)
	})
}

func (c *AIExtractor) completeOnce(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{
			Code:      ErrAIUnavailable,
			Message:   "chat completions request failed",
			Stage:     "ai",
			Retryable: true,
			Cause:     err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &Error{
			Code:      ErrAIRateLimited,
			Message:   "model API rate limited",
			Stage:     "ai",
			Retryable: true,
		}
	case resp.StatusCode >= 500:
		return "", &Error{
			Code:      ErrAIUnavailable,
			Message:   fmt.Sprintf("model API returned status %d", resp.StatusCode),
			Stage:     "ai",
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return "", &Error{
			Code:    ErrAIBadResponse,
			Message: fmt.Sprintf("model API returned status %d", resp.StatusCode),
			Stage:   "ai",
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &Error{
			Code:    ErrAIBadResponse,
			Message: "malformed chat completions response",
			Stage:   "ai",
			Cause:   err,
		}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{
			Code:    ErrAIBadResponse,
			Message: "chat completions response has no choices",
			Stage:   "ai",
		}
	}
	return parsed.Choices[0].Message.Content, nil
}

// sliceJSON cuts the outermost open..close span out of model output, which
// often wraps JSON in prose or markdown fences.
func sliceJSON(content string, open, closing byte) (string, bool) {
	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, closing)
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return content[start : end+1], true
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
