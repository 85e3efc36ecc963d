package extraction

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestReconcileReceipt(t *testing.T) {
	tests := []struct {
		name       string
		ai         *CandidateFields
		heuristic  CandidateFields
		wantAmount *float64
		wantDate   string
		wantCat    string
		wantAmtSrc FieldSource
		wantCatSrc FieldSource
	}{
		{
			name:       "AI wins on every field",
			ai:         &CandidateFields{Amount: floatPtr(45), DateISO: "2024-03-12", Category: "Food"},
			heuristic:  CandidateFields{Amount: floatPtr(9), DateISO: "2023-01-01", Category: "Transport"},
			wantAmount: floatPtr(45),
			wantDate:   "2024-03-12",
			wantCat:    "Food",
			wantAmtSrc: SourceAI,
			wantCatSrc: SourceAI,
		},
		{
			name:       "heuristic fills AI gaps independently",
			ai:         &CandidateFields{Category: "Food"},
			heuristic:  CandidateFields{Amount: floatPtr(9.50), DateISO: "2024-01-05"},
			wantAmount: floatPtr(9.50),
			wantDate:   "2024-01-05",
			wantCat:    "Food",
			wantAmtSrc: SourceHeuristic,
			wantCatSrc: SourceAI,
		},
		{
			name:       "invalid AI date falls through",
			ai:         &CandidateFields{DateISO: "03/12/2024"},
			heuristic:  CandidateFields{DateISO: "2024-12-03"},
			wantDate:   "2024-12-03",
			wantCat:    DefaultExpenseCategory,
			wantAmtSrc: SourceDefault,
			wantCatSrc: SourceDefault,
		},
		{
			name:       "AI absent entirely",
			ai:         nil,
			heuristic:  CandidateFields{Amount: floatPtr(3), Category: "Health"},
			wantAmount: floatPtr(3),
			wantCat:    "Health",
			wantAmtSrc: SourceHeuristic,
			wantCatSrc: SourceHeuristic,
		},
		{
			name:       "nothing found defaults category only",
			ai:         nil,
			heuristic:  CandidateFields{},
			wantCat:    DefaultExpenseCategory,
			wantAmtSrc: SourceDefault,
			wantCatSrc: SourceDefault,
		},
		{
			name:       "non-positive AI amount ignored",
			ai:         &CandidateFields{Amount: floatPtr(0)},
			heuristic:  CandidateFields{Amount: floatPtr(7)},
			wantAmount: floatPtr(7),
			wantCat:    DefaultExpenseCategory,
			wantAmtSrc: SourceHeuristic,
			wantCatSrc: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ReconcileReceipt(tt.ai, tt.heuristic, "raw")

			if rec.RawText != "raw" {
				t.Errorf("rawText = %q", rec.RawText)
			}
			if tt.wantAmount == nil {
				if rec.Amount != nil {
					t.Errorf("amount = %v, want absent", *rec.Amount)
				}
			} else if rec.Amount == nil || *rec.Amount != *tt.wantAmount {
				t.Errorf("amount = %v, want %v", rec.Amount, *tt.wantAmount)
			}
			if rec.DateISO != tt.wantDate {
				t.Errorf("dateISO = %q, want %q", rec.DateISO, tt.wantDate)
			}
			if rec.Category != tt.wantCat {
				t.Errorf("category = %q, want %q", rec.Category, tt.wantCat)
			}
			if rec.AmountSource != tt.wantAmtSrc {
				t.Errorf("amount source = %q, want %q", rec.AmountSource, tt.wantAmtSrc)
			}
			if rec.CategorySource != tt.wantCatSrc {
				t.Errorf("category source = %q, want %q", rec.CategorySource, tt.wantCatSrc)
			}
		})
	}
}
