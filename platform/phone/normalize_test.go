package phone

import (
	"math/rand"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "local mobile", in: "08123456789", want: "+628123456789", ok: true},
		{name: "formatted international", in: "+62 813-4321-6935", want: "+6281343216935", ok: true},
		{name: "letters only survive as short digits", in: "abc123", ok: false},
		{name: "bare mobile without trunk prefix", in: "812345678", want: "+62812345678", ok: true},
		{name: "short bare mobile", in: "81234567", ok: false},
		{name: "country code without plus", in: "6281234567890", want: "+6281234567890", ok: true},
		{name: "other country without plus", in: "4915123456789", want: "+4915123456789", ok: true},
		{name: "already canonical", in: "+4915123456789", want: "+4915123456789", ok: true},
		{name: "parentheses and dots", in: "(0812) 3456.7890", want: "+6281234567890", ok: true},
		{name: "too short without plus", in: "123456789", ok: false},
		{name: "too long", in: "+1234567890123456", ok: false},
		{name: "plus in the middle", in: "62+81234567", ok: false},
		{name: "empty", in: "", ok: false},
		{name: "only punctuation", in: " - . ", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Normalize(tc.in)
			if ok != tc.ok {
				t.Fatalf("Normalize(%q) ok = %v, want %v (got %q)", tc.in, ok, tc.ok, got)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidateReasons(t *testing.T) {
	if v := Validate("08123456789"); !v.Valid || v.Normalized != "+628123456789" || v.Reason != ReasonOK {
		t.Fatalf("unexpected verdict for local mobile: %+v", v)
	}
	if v := Validate("   "); v.Valid || v.Reason != ReasonEmptyInput {
		t.Fatalf("expected EmptyInput, got %+v", v)
	}
	if v := Validate("not-a-number"); v.Valid || v.Reason != ReasonInvalidFormat {
		t.Fatalf("expected InvalidFormat, got %+v", v)
	}
	if v := Validate("abc123"); v.Valid || v.Normalized != "" {
		t.Fatalf("expected invalid verdict without normalized value, got %+v", v)
	}
}

func TestSinglePolicyIsStricter(t *testing.T) {
	// nine digits after the plus
	raw := "+621234567"
	if v := BulkPolicy.Validate(raw); !v.Valid {
		t.Fatalf("bulk policy should accept %q: %+v", raw, v)
	}
	v := SinglePolicy.Validate(raw)
	if v.Valid || v.Reason != ReasonInvalidFormat {
		t.Fatalf("single policy should reject %q: %+v", raw, v)
	}
	if v.Message == ReasonInvalidFormat.Message() {
		t.Fatalf("expected digit bound message, got %q", v.Message)
	}
}

func TestNewPolicy(t *testing.T) {
	if _, err := NewPolicy(10, 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bounds := range [][2]int{{7, 15}, {8, 16}, {12, 10}} {
		if _, err := NewPolicy(bounds[0], bounds[1]); err == nil {
			t.Fatalf("expected error for bounds %v", bounds)
		}
	}
}

func randomInputs(n int) []string {
	alphabet := []byte("0123456789++-- ().abcx62 08")
	rng := rand.New(rand.NewSource(42))
	inputs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		size := rng.Intn(24)
		buf := make([]byte, size)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		inputs = append(inputs, string(buf))
	}
	return inputs
}

func TestNormalizeProperties(t *testing.T) {
	for _, in := range randomInputs(5000) {
		first, ok := Normalize(in)
		second, ok2 := Normalize(in)
		if first != second || ok != ok2 {
			t.Fatalf("Normalize(%q) is not deterministic: %q/%v vs %q/%v", in, first, ok, second, ok2)
		}
		if !ok {
			continue
		}
		again, ok := Normalize(first)
		if !ok || again != first {
			t.Fatalf("Normalize is not idempotent for %q: %q -> %q", in, first, again)
		}
		v := Validate(in)
		if v.Valid && !IsCanonical(v.Normalized) {
			t.Fatalf("valid verdict with non canonical value for %q: %q", in, v.Normalized)
		}
	}
}
