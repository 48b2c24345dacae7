package importer

import (
	"context"
	"errors"
	"slices"
	"testing"

	"phonebook_backend/platform/phone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines(t *testing.T) {
	text := "081234567890\r\n\n  +62 813-4321-6935 ; 0812,0812\r  \nlast"

	got := slices.Collect(Parse(text, ModeLines))
	want := []Candidate{
		{Index: 0, Raw: "081234567890", Line: 1},
		{Index: 1, Raw: "+62 813-4321-6935", Line: 3},
		{Index: 2, Raw: "0812", Line: 3},
		{Index: 3, Raw: "0812", Line: 3},
		{Index: 4, Raw: "last", Line: 5},
	}
	assert.Equal(t, want, got)
}

func TestParseScan(t *testing.T) {
	text := "call 081234567890 or +6281343216935.\nshort 1234567 and 12345678"

	var raws []string
	var lineNos []int
	for c := range Parse(text, ModeScan) {
		raws = append(raws, c.Raw)
		lineNos = append(lineNos, c.Line)
	}
	assert.Equal(t, []string{"081234567890", "+6281343216935", "12345678"}, raws)
	assert.Equal(t, []int{1, 1, 2}, lineNos)
}

func TestParseIsRestartable(t *testing.T) {
	seq := Parse("a\nb\nc", ModeLines)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)

	// stopping early must not disturb a later full pass
	for range seq {
		break
	}
	assert.Equal(t, first, slices.Collect(seq))
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, slices.Collect(Parse("", ModeLines)))
	assert.Empty(t, slices.Collect(Parse(" \n\r\n ,; ", ModeLines)))
	assert.Empty(t, slices.Collect(Parse("no digits", ModeScan)))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeLines, "lines": ModeLines, " SCAN ": ModeScan} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("csv")
	assert.Error(t, err)
}

func valid(index int, raw string) Item {
	return Item{Index: index, Raw: raw, Verdict: phone.Validate(raw)}
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	calls := 0
	exists := func(_ context.Context, n string) (bool, error) {
		calls++
		return n == "+6289999999999", nil
	}

	prior := []Item{valid(0, "081234567890"), valid(1, "garbage")}

	status, err := Classify(ctx, valid(2, "+62 812 3456 7890"), prior, exists)
	require.NoError(t, err)
	assert.Equal(t, DuplicateInBatch, status)
	assert.Zero(t, calls)

	status, err = Classify(ctx, valid(2, "089999999999"), prior, exists)
	require.NoError(t, err)
	assert.Equal(t, DuplicateInStore, status)
	assert.Equal(t, 1, calls)

	status, err = Classify(ctx, valid(2, "081111111111"), prior, exists)
	require.NoError(t, err)
	assert.Equal(t, DuplicateNone, status)
	assert.Equal(t, 2, calls)

	status, err = Classify(ctx, valid(2, "garbage"), prior, exists)
	require.NoError(t, err)
	assert.Equal(t, DuplicateNone, status)
	assert.Equal(t, 2, calls)
}

func TestClassifyIgnoresLaterItems(t *testing.T) {
	exists := func(context.Context, string) (bool, error) { return false, nil }

	// only strictly earlier items count
	status, err := Classify(context.Background(), valid(0, "081234567890"), []Item{valid(3, "081234567890")}, exists)
	require.NoError(t, err)
	assert.Equal(t, DuplicateNone, status)
}

func TestClassifyLookupError(t *testing.T) {
	exists := func(context.Context, string) (bool, error) { return false, errors.New("down") }

	_, err := Classify(context.Background(), valid(0, "081234567890"), nil, exists)
	assert.ErrorContains(t, err, "down")
}

func TestDuplicateStatusText(t *testing.T) {
	b, err := DuplicateInStore.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "DuplicateInStore", string(b))
	assert.Equal(t, "None", DuplicateNone.String())
}

func TestPreviewAll(t *testing.T) {
	store := newFakeStore(1)
	store.numbers["+6289999999999"] = true
	im := New[record](store, Options{})

	got, err := im.PreviewAll(context.Background(), []string{"081234567890", "0812 3456 7890", "089999999999", "x"})
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, "+62 812-3456-7890", got[0].Formatted)
	assert.Equal(t, DuplicateNone, got[0].Duplicate)
	assert.Equal(t, DuplicateInBatch, got[1].Duplicate)
	assert.Equal(t, DuplicateInStore, got[2].Duplicate)
	assert.False(t, got[3].Verdict.Valid)
	assert.Empty(t, got[3].Formatted)
	assert.Zero(t, store.insertCalls.Load())
}

func TestCheck(t *testing.T) {
	exists := func(_ context.Context, n string) (bool, error) { return n == "+6281234567890", nil }

	p, err := Check(context.Background(), "0812-3456-7890", phone.BulkPolicy, exists)
	require.NoError(t, err)
	assert.True(t, p.Verdict.Valid)
	assert.Equal(t, DuplicateInStore, p.Duplicate)
}
