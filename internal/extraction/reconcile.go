package extraction

// Default labels used when neither extractor produced one.
const (
	DefaultExpenseCategory = "Others"
	DefaultIncomeSource    = "Other"
)

// FieldSource records which extractor supplied a reconciled field.
type FieldSource string

const (
	SourceAI        FieldSource = "ai"
	SourceHeuristic FieldSource = "heuristic"
	SourceDefault   FieldSource = "default"
)

// CandidateFields is one extractor's proposal for a receipt. Absent fields
// are nil/empty; they never overwrite another extractor's value.
type CandidateFields struct {
	Amount   *float64
	DateISO  string
	Category string
}

// ReceiptRecord is the reconciled, unsaved result of a receipt parse.
type ReceiptRecord struct {
	Amount   *float64
	DateISO  string
	Category string
	RawText  string

	AmountSource   FieldSource
	DateSource     FieldSource
	CategorySource FieldSource
}

// ReconcileReceipt merges the AI and heuristic candidates field by field.
// A valid AI value wins; the heuristic fills gaps; category falls back to a
// default so the record always carries one. Amount and date may stay absent.
func ReconcileReceipt(ai *CandidateFields, heuristic CandidateFields, rawText string) ReceiptRecord {
	rec := ReceiptRecord{
		RawText:        rawText,
		AmountSource:   SourceDefault,
		DateSource:     SourceDefault,
		CategorySource: SourceDefault,
	}

	if ai != nil && ai.Amount != nil && *ai.Amount > 0 {
		rec.Amount = ai.Amount
		rec.AmountSource = SourceAI
	} else if heuristic.Amount != nil && *heuristic.Amount > 0 {
		rec.Amount = heuristic.Amount
		rec.AmountSource = SourceHeuristic
	}

	if ai != nil && validISODate(ai.DateISO) {
		rec.DateISO = ai.DateISO
		rec.DateSource = SourceAI
	} else if validISODate(heuristic.DateISO) {
		rec.DateISO = heuristic.DateISO
		rec.DateSource = SourceHeuristic
	}

	switch {
	case ai != nil && ai.Category != "":
		rec.Category = ai.Category
		rec.CategorySource = SourceAI
	case heuristic.Category != "":
		rec.Category = heuristic.Category
		rec.CategorySource = SourceHeuristic
	default:
		rec.Category = DefaultExpenseCategory
	}

	return rec
}
