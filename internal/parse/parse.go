// Package parse holds the deterministic text parsers used as fast paths
// before any oracle call. Every function is total: failure is reported
// through the boolean result, never a panic or error.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	lakh  = 100_000
	crore = 10_000_000
)

var (
	// A leading number followed by an optional, possibly attached, scale word.
	scaledAmountRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(lakhs?|lacs?|crores?|cr)\b`)

	yearsRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:years?|yrs?)\b`)
	monthsRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:months?|mos?)\b`)
)

// Amount parses a currency amount such as "5,00,000", "25 lakh", "1.2cr" or "750000.50".
func Amount(text string) (float64, bool) {
	t := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
	if t == "" {
		return 0, false
	}

	if m := scaledAmountRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		if strings.HasPrefix(m[2], "l") {
			return n * lakh, true
		}
		return n * crore, true
	}

	return Number(t)
}

// DurationMonths parses a loan tenure into months: "2 years" -> 24,
// "18 months" -> 18, "24" -> 24. Fractional bare numbers are truncated.
func DurationMonths(text string) (int, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return 0, false
	}

	if m := yearsRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return int(n * 12), true
	}

	if m := monthsRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return int(n), true
	}

	n, ok := Number(t)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// IsPureNumber reports whether the trimmed text is entirely a decimal number.
func IsPureNumber(text string) bool {
	_, ok := Number(text)
	return ok
}

// Number parses the trimmed text as a finite decimal number.
// Go's ParseFloat also accepts "NaN", "Inf" and hex floats; those are rejected.
func Number(text string) (float64, bool) {
	t := strings.TrimSpace(text)
	if t == "" || strings.ContainsAny(t, "xXpP_") {
		return 0, false
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
