// Package importer turns batches of raw phone numbers into stored records.
// It validates every item, classifies duplicates against the batch and the
// store, and reports one disposition per item.
package importer

import (
	"context"
	"fmt"
	"sync"

	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxBatchSize caps a batch when Options leaves it unset.
const DefaultMaxBatchSize = 1000

// Store is the persistence the importer needs. R is the stored record type.
// InsertPhoneNumber should report a duplicate number as an apperr conflict
// (or code apperr.CodeAlreadyExists) and a missing category with code
// apperr.CodeCategoryNotFound.
type Store[R any] interface {
	ExistsByNormalizedNumber(ctx context.Context, normalized string) (bool, error)
	CategoryExists(ctx context.Context, categoryID int64) (bool, error)
	InsertPhoneNumber(ctx context.Context, raw, normalized string, categoryID int64) (R, error)
}

// Entry is one requested item.
type Entry struct {
	Raw        string
	CategoryID int64
	Line       int
}

// Options tunes an Importer.
type Options struct {
	MaxBatchSize int
	Policy       phone.Policy
	// LookupConcurrency > 1 prefetches existence checks in parallel before
	// the sequential pass. Results and their order do not change.
	LookupConcurrency int
}

// Importer runs bulk imports against one store.
type Importer[R any] struct {
	store Store[R]
	opts  Options
}

// New creates an importer. Zero options fall back to a 1000 item cap and the
// bulk phone policy.
func New[R any](store Store[R], opts Options) *Importer[R] {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.Policy == (phone.Policy{}) {
		opts.Policy = phone.BulkPolicy
	}
	return &Importer[R]{store: store, opts: opts}
}

// MaxBatchSize returns the configured cap.
func (im *Importer[R]) MaxBatchSize() int {
	return im.opts.MaxBatchSize
}

// CheckSize rejects empty and oversized batches.
func (im *Importer[R]) CheckSize(n int) error {
	if n == 0 {
		return apperr.BadRequest("numbers must be a non-empty list").WithCode(apperr.CodeBatchEmptyOrMalformed)
	}
	if n > im.opts.MaxBatchSize {
		return apperr.BadRequest(fmt.Sprintf("maximum %d phone numbers per import, got %d", im.opts.MaxBatchSize, n)).
			WithCode(apperr.CodeBatchTooLarge).
			WithDetails(map[string]int{"max_batch_size": im.opts.MaxBatchSize, "received": n})
	}
	return nil
}

// ImportText parses text with mode and imports every candidate into one
// category.
func (im *Importer[R]) ImportText(ctx context.Context, text string, mode Mode, categoryID int64) (Outcome[R], error) {
	if categoryID <= 0 {
		return Outcome[R]{}, apperr.BadRequest("category_id is required")
	}

	// collect at most one item past the cap so oversized input stops early
	entries := make([]Entry, 0, 64)
	for c := range Parse(text, mode) {
		entries = append(entries, Entry{Raw: c.Raw, CategoryID: categoryID, Line: c.Line})
		if len(entries) > im.opts.MaxBatchSize {
			break
		}
	}
	if len(entries) > im.opts.MaxBatchSize {
		return Outcome[R]{}, apperr.BadRequest(fmt.Sprintf("maximum %d phone numbers per import", im.opts.MaxBatchSize)).
			WithCode(apperr.CodeBatchTooLarge)
	}
	return im.Import(ctx, entries)
}

// Import processes entries strictly in order. Per-item failures are recorded
// in the outcome; only an empty or oversized batch fails the call.
func (im *Importer[R]) Import(ctx context.Context, entries []Entry) (Outcome[R], error) {
	if err := im.CheckSize(len(entries)); err != nil {
		return Outcome[R]{}, err
	}

	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{
			Index:      i,
			Raw:        e.Raw,
			CategoryID: e.CategoryID,
			Line:       e.Line,
			Verdict:    im.opts.Policy.Validate(e.Raw),
		}
	}

	exists := im.existsFunc(ctx, items)
	run := &batchRun[R]{
		store:      im.store,
		index:      newBatchIndex(len(items)),
		categories: make(map[int64]bool),
		outcome: Outcome[R]{
			Imported: make([]R, 0, len(items)),
			Errors:   make([]ItemError, 0),
		},
	}
	for _, item := range items {
		run.process(ctx, item, exists)
	}

	run.outcome.Summary = summarize(len(items), len(run.outcome.Imported))
	return run.outcome, nil
}

// existsFunc returns the lookup used by the sequential pass. With prefetching
// enabled every distinct valid number is looked up once, concurrently, and
// the pass reads the memoized answers.
func (im *Importer[R]) existsFunc(ctx context.Context, items []Item) ExistsFunc {
	if im.opts.LookupConcurrency <= 1 {
		return im.store.ExistsByNormalizedNumber
	}

	type answer struct {
		found bool
		err   error
	}
	var (
		mu      sync.Mutex
		answers = make(map[string]answer)
	)

	g := new(errgroup.Group)
	g.SetLimit(im.opts.LookupConcurrency)
	for _, item := range items {
		if !item.Verdict.Valid {
			continue
		}
		n := item.Verdict.Normalized
		mu.Lock()
		_, queued := answers[n]
		if !queued {
			answers[n] = answer{}
		}
		mu.Unlock()
		if queued {
			continue
		}
		g.Go(func() error {
			found, err := im.store.ExistsByNormalizedNumber(ctx, n)
			mu.Lock()
			answers[n] = answer{found: found, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return func(_ context.Context, normalized string) (bool, error) {
		a := answers[normalized]
		return a.found, a.err
	}
}

// batchRun is the per-call state of Import.
type batchRun[R any] struct {
	store      Store[R]
	index      *batchIndex
	categories map[int64]bool
	outcome    Outcome[R]
}

func (r *batchRun[R]) process(ctx context.Context, item Item, exists ExistsFunc) {
	if !item.Verdict.Valid {
		code := CodeInvalidFormat
		if item.Verdict.Reason == phone.ReasonEmptyInput {
			code = CodeEmptyInput
		}
		r.fail(item, code, item.Verdict.Message)
		return
	}

	status, err := r.index.classify(ctx, item, exists)
	if err != nil {
		r.fail(item, CodeStoreError, err.Error())
		return
	}
	switch status {
	case DuplicateInBatch:
		first, _ := r.index.firstIndex(item.Verdict.Normalized)
		r.fail(item, CodeDuplicateInBatch, fmt.Sprintf("duplicate of item %d in this batch", first))
		return
	case DuplicateInStore:
		r.fail(item, CodeAlreadyExists, "phone number already exists")
		return
	}

	found, err := r.categoryExists(ctx, item.CategoryID)
	if err != nil {
		r.fail(item, CodeStoreError, err.Error())
		return
	}
	if !found {
		r.fail(item, CodeCategoryNotFound, "category not found")
		return
	}

	record, err := r.store.InsertPhoneNumber(ctx, item.Raw, item.Verdict.Normalized, item.CategoryID)
	if err != nil {
		code, msg := classifyInsertError(err)
		r.fail(item, code, msg)
		return
	}
	r.outcome.Imported = append(r.outcome.Imported, record)
}

func (r *batchRun[R]) categoryExists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	if found, ok := r.categories[id]; ok {
		return found, nil
	}
	found, err := r.store.CategoryExists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	r.categories[id] = found
	return found, nil
}

func (r *batchRun[R]) fail(item Item, code Code, message string) {
	r.outcome.Errors = append(r.outcome.Errors, ItemError{
		Index:          item.Index,
		OriginalNumber: item.Raw,
		Error:          code,
		Message:        message,
		Line:           item.Line,
	})
}

// classifyInsertError maps a store failure. A unique violation that slipped
// past the existence check (a concurrent import) reads as AlreadyExists.
func classifyInsertError(err error) (Code, string) {
	if e, ok := apperr.As(err); ok {
		switch {
		case e.Code == apperr.CodeAlreadyExists || e.Kind == apperr.KindConflict:
			return CodeAlreadyExists, "phone number already exists"
		case e.Code == apperr.CodeCategoryNotFound:
			return CodeCategoryNotFound, "category not found"
		}
	}
	return CodeStoreError, err.Error()
}
