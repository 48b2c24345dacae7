// Package phone provides phone number normalization, validation and formatting.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"fmt"
	"regexp"
	"strings"
)

// Digit bounds of a canonical number, excluding the leading '+'.
const (
	MinDigits = 8
	MaxDigits = 15
)

const indonesiaPrefix = "+62"

var canonicalPattern = regexp.MustCompile(`^\+[0-9]{8,15}$`)

// Reason explains a validation verdict.
type Reason string

const (
	ReasonOK            Reason = "Ok"
	ReasonEmptyInput    Reason = "EmptyInput"
	ReasonInvalidFormat Reason = "InvalidFormat"
)

// Message returns the human readable text for a reason.
func (r Reason) Message() string {
	switch r {
	case ReasonOK:
		return "valid phone number"
	case ReasonEmptyInput:
		return "phone number is empty"
	default:
		return "invalid phone number format"
	}
}

// Verdict is the result of validating one raw input.
type Verdict struct {
	Valid      bool   `json:"is_valid"`
	Normalized string `json:"normalized_number,omitempty"`
	Reason     Reason `json:"reason"`
	Message    string `json:"message"`
}

// Normalize maps raw user input to its canonical "+<digits>" form.
// It returns false when nothing usable survives or the result does not have
// the canonical shape.
func Normalize(raw string) (string, bool) {
	s := clean(raw)
	if s == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(s, "08"):
		// local mobile format
		s = indonesiaPrefix + s[1:]
	case strings.HasPrefix(s, "8") && len(s) >= 9:
		s = indonesiaPrefix + s
	case strings.HasPrefix(s, "62"):
		s = "+" + s
	case !strings.HasPrefix(s, "+") && len(s) >= 10:
		s = "+" + s
	}

	if !canonicalPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// IsCanonical reports whether s already is a normalized number.
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

// Digits returns the number of digits of a normalized number.
func Digits(normalized string) int {
	return len(strings.TrimPrefix(normalized, "+"))
}

func clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c >= '0' && c <= '9') || c == '+' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Policy bounds the digit count accepted by Validate.
type Policy struct {
	MinDigits int
	MaxDigits int
}

var (
	// BulkPolicy is used by batch imports and checks.
	BulkPolicy = Policy{MinDigits: MinDigits, MaxDigits: MaxDigits}
	// SinglePolicy is used when a single number is added by hand.
	SinglePolicy = Policy{MinDigits: 10, MaxDigits: MaxDigits}
)

// NewPolicy returns a policy after checking its bounds fit the canonical shape.
func NewPolicy(minDigits, maxDigits int) (Policy, error) {
	if minDigits < MinDigits || maxDigits > MaxDigits || minDigits > maxDigits {
		return Policy{}, fmt.Errorf("invalid digit bounds %d..%d: must satisfy %d <= min <= max <= %d",
			minDigits, maxDigits, MinDigits, MaxDigits)
	}
	return Policy{MinDigits: minDigits, MaxDigits: maxDigits}, nil
}

// Validate normalizes raw and checks the digit bounds. It never fails; the
// verdict carries the outcome.
func (p Policy) Validate(raw string) Verdict {
	if strings.TrimSpace(raw) == "" {
		return reject(ReasonEmptyInput, ReasonEmptyInput.Message())
	}

	normalized, ok := Normalize(raw)
	if !ok {
		return reject(ReasonInvalidFormat, ReasonInvalidFormat.Message())
	}

	if n := Digits(normalized); n < p.MinDigits || n > p.MaxDigits {
		return reject(ReasonInvalidFormat,
			fmt.Sprintf("phone number must have between %d and %d digits", p.MinDigits, p.MaxDigits))
	}

	return Verdict{Valid: true, Normalized: normalized, Reason: ReasonOK, Message: ReasonOK.Message()}
}

// Validate checks raw against BulkPolicy.
func Validate(raw string) Verdict {
	return BulkPolicy.Validate(raw)
}

func reject(reason Reason, message string) Verdict {
	return Verdict{Reason: reason, Message: message}
}
