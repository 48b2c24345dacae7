package importer

import (
	"context"
	"fmt"

	"phonebook_backend/platform/phone"
)

// DuplicateStatus says whether a valid item repeats a known number.
type DuplicateStatus int

const (
	DuplicateNone DuplicateStatus = iota
	DuplicateInStore
	DuplicateInBatch
)

func (s DuplicateStatus) String() string {
	switch s {
	case DuplicateInStore:
		return "DuplicateInStore"
	case DuplicateInBatch:
		return "DuplicateInBatch"
	default:
		return "None"
	}
}

// MarshalText renders the status by name in JSON payloads.
func (s DuplicateStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ExistsFunc reports whether a normalized number is already stored.
type ExistsFunc func(ctx context.Context, normalized string) (bool, error)

// Item is one batch entry after validation.
type Item struct {
	Index      int
	Raw        string
	CategoryID int64
	Line       int
	Verdict    phone.Verdict
	Duplicate  DuplicateStatus
}

// Classify decides the duplicate status of item given the items before it in
// the same batch. Invalid items are left as DuplicateNone without calling
// exists. An earlier item with the same number wins over the store lookup,
// and exists is called at most once.
func Classify(ctx context.Context, item Item, prior []Item, exists ExistsFunc) (DuplicateStatus, error) {
	if !item.Verdict.Valid {
		return DuplicateNone, nil
	}
	for _, p := range prior {
		if p.Index < item.Index && p.Verdict.Valid && p.Verdict.Normalized == item.Verdict.Normalized {
			return DuplicateInBatch, nil
		}
	}
	return lookup(ctx, item.Verdict.Normalized, exists)
}

func lookup(ctx context.Context, normalized string, exists ExistsFunc) (DuplicateStatus, error) {
	found, err := exists(ctx, normalized)
	if err != nil {
		return DuplicateNone, fmt.Errorf("check existing number: %w", err)
	}
	if found {
		return DuplicateInStore, nil
	}
	return DuplicateNone, nil
}

// batchIndex is the running duplicate set of one import. It gives the same
// answers as Classify over the prior items in constant time per item.
type batchIndex struct {
	seen map[string]int
}

func newBatchIndex(size int) *batchIndex {
	return &batchIndex{seen: make(map[string]int, size)}
}

// classify records item as seen and returns its status.
func (b *batchIndex) classify(ctx context.Context, item Item, exists ExistsFunc) (DuplicateStatus, error) {
	if !item.Verdict.Valid {
		return DuplicateNone, nil
	}
	n := item.Verdict.Normalized
	if _, dup := b.seen[n]; dup {
		return DuplicateInBatch, nil
	}
	b.seen[n] = item.Index
	return lookup(ctx, n, exists)
}

// firstIndex returns the index of the first item carrying normalized.
func (b *batchIndex) firstIndex(normalized string) (int, bool) {
	i, ok := b.seen[normalized]
	return i, ok
}
