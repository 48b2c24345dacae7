package importer

import "fmt"

// Code is the machine readable reason an item was not imported.
type Code string

const (
	CodeEmptyInput       Code = "EmptyInput"
	CodeInvalidFormat    Code = "InvalidFormat"
	CodeDuplicateInBatch Code = "DuplicateInBatch"
	CodeAlreadyExists    Code = "AlreadyExists"
	CodeCategoryNotFound Code = "CategoryNotFound"
	CodeStoreError       Code = "StoreError"
)

// ItemError describes one rejected item.
type ItemError struct {
	Index          int    `json:"index"`
	OriginalNumber string `json:"original_number"`
	Error          Code   `json:"error"`
	Message        string `json:"message"`
	Line           int    `json:"line,omitempty"`
}

// Summary totals one import. Successful + Failed == TotalProcessed.
type Summary struct {
	TotalProcessed int    `json:"total_processed"`
	Successful     int    `json:"successful"`
	Failed         int    `json:"failed"`
	SuccessRate    string `json:"success_rate"`
}

// Outcome is the result of one import: every input item lands in exactly one
// of Imported or Errors, both in input order.
type Outcome[R any] struct {
	Imported []R         `json:"data"`
	Errors   []ItemError `json:"errors"`
	Summary  Summary     `json:"summary"`
}

// ErrorCounts groups the errors by code.
func (o Outcome[R]) ErrorCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range o.Errors {
		counts[string(e.Error)]++
	}
	return counts
}

// MapOutcome converts the imported records of o with fn.
func MapOutcome[R, T any](o Outcome[R], fn func(R) T) Outcome[T] {
	mapped := make([]T, len(o.Imported))
	for i, r := range o.Imported {
		mapped[i] = fn(r)
	}
	return Outcome[T]{Imported: mapped, Errors: o.Errors, Summary: o.Summary}
}

func summarize(total, successful int) Summary {
	rate := 0.0
	if total > 0 {
		rate = float64(successful) * 100 / float64(total)
	}
	return Summary{
		TotalProcessed: total,
		Successful:     successful,
		Failed:         total - successful,
		SuccessRate:    fmt.Sprintf("%.1f%%", rate),
	}
}
