package importer

import (
	"context"

	"phonebook_backend/platform/phone"
)

// Preview is the dry-run view of one raw number.
type Preview struct {
	Index     int             `json:"index"`
	Input     string          `json:"input"`
	Verdict   phone.Verdict   `json:"verdict"`
	Formatted string          `json:"formatted,omitempty"`
	Duplicate DuplicateStatus `json:"duplicate_status"`
	Line      int             `json:"line,omitempty"`
}

// PreviewAll validates and classifies raws without writing anything. The
// store is consulted only for valid numbers not already seen in raws.
func (im *Importer[R]) PreviewAll(ctx context.Context, raws []string) ([]Preview, error) {
	if err := im.CheckSize(len(raws)); err != nil {
		return nil, err
	}

	index := newBatchIndex(len(raws))
	out := make([]Preview, 0, len(raws))
	for i, raw := range raws {
		item := Item{Index: i, Raw: raw, Verdict: im.opts.Policy.Validate(raw)}
		status, err := index.classify(ctx, item, im.store.ExistsByNormalizedNumber)
		if err != nil {
			return nil, err
		}
		p := Preview{Index: i, Input: raw, Verdict: item.Verdict, Duplicate: status}
		if item.Verdict.Valid {
			p.Formatted = phone.Format(item.Verdict.Normalized)
		}
		out = append(out, p)
	}
	return out, nil
}

// Check validates one number with policy and reports whether it is stored.
func Check(ctx context.Context, raw string, policy phone.Policy, exists ExistsFunc) (Preview, error) {
	item := Item{Raw: raw, Verdict: policy.Validate(raw)}
	status, err := Classify(ctx, item, nil, exists)
	if err != nil {
		return Preview{}, err
	}
	p := Preview{Input: raw, Verdict: item.Verdict, Duplicate: status}
	if item.Verdict.Valid {
		p.Formatted = phone.Format(item.Verdict.Normalized)
	}
	return p, nil
}
