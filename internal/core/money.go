// Package core provides money parsing and handling utilities.
//
// This file contains the amount normalization used by the entry form and the
// locale-aware formatting used for display.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AmountPolicy decides what happens to amount text that cannot be read.
type AmountPolicy string

const (
	// AmountPermissive coerces malformed text to zero.
	AmountPermissive AmountPolicy = "permissive"
	// AmountStrict rejects malformed text with ErrMalformedAmount.
	AmountStrict AmountPolicy = "strict"
)

// ParseAmountPolicy resolves a policy name; empty means permissive.
func ParseAmountPolicy(s string) (AmountPolicy, error) {
	switch AmountPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AmountPermissive:
		return AmountPermissive, nil
	case AmountStrict:
		return AmountStrict, nil
	}
	return "", fmt.Errorf("unknown amount policy %q", s)
}

// floatPrefix matches the longest leading decimal literal, the way a
// parseFloat-style reader consumes its input.
var floatPrefix = regexp.MustCompile(`^([+-]?)(\d*)(?:\.(\d*))?(?:[eE]([+-]?\d+))?`)

var maxMoney = decimal.NewFromInt(math.MaxInt64)

// ParseAmount normalizes amount text from the entry form.
//
// Every leading '0' is stripped first; an empty remainder reads as "0". The
// longest leading decimal literal is then parsed and rounded half away from
// zero to whole units, so "007" is 7 and "12abc" is 12. Text with no literal,
// negative values and values beyond int64 are malformed: the permissive
// policy turns them into 0, the strict policy returns ErrMalformedAmount.
// Trailing garbage is also malformed under the strict policy.
func ParseAmount(text string, policy AmountPolicy) (Money, error) {
	s := strings.TrimLeft(text, "0")
	if s == "" {
		s = "0"
	}
	s = strings.TrimSpace(s)

	m, consumed, ok := readAmount(s)
	if policy == AmountStrict {
		if !ok || consumed != len(s) {
			return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, text)
		}
	}
	if !ok {
		return 0, nil
	}
	return m, nil
}

func readAmount(s string) (Money, int, bool) {
	sub := floatPrefix.FindStringSubmatch(s)
	if sub == nil {
		return 0, 0, false
	}
	sign, intPart, fracPart, exp := sub[1], sub[2], sub[3], sub[4]
	if intPart == "" && fracPart == "" {
		return 0, 0, false
	}
	consumed := len(sub[0])

	var b strings.Builder
	b.WriteString(sign)
	if intPart == "" {
		intPart = "0"
	}
	b.WriteString(intPart)
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	if exp != "" {
		b.WriteByte('e')
		b.WriteString(exp)
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return 0, consumed, false
	}
	d = d.Round(0)
	if d.IsNegative() || d.GreaterThan(maxMoney) {
		return 0, consumed, false
	}
	return Money(d.IntPart()), consumed, true
}

// AmountFormatter renders amounts with locale-aware thousands separators.
type AmountFormatter struct {
	tag language.Tag
}

// NewAmountFormatter builds a formatter for a BCP 47 locale such as "ko-KR".
func NewAmountFormatter(locale string) (*AmountFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &AmountFormatter{tag: tag}, nil
}

// Format returns m grouped by thousands, e.g. 1234567 -> "1,234,567".
func (f *AmountFormatter) Format(m Money) string {
	return message.NewPrinter(f.tag).Sprintf("%d", int64(m))
}
