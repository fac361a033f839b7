package goquery

import (
	"regexp"
	"strconv"
	"strings"
)

var currencySymbols = strings.NewReplacer("€", "", "$", "", "£", "", " ", " ")

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// parsePrice converts marketplace price text to a numeric value. It handles
// both European formats ("12.500,00 €") and plain thousands ("12,500 EUR").
// Returns 0 and false when no price can be extracted.
func parsePrice(text string) (float64, bool) {
	cleaned := currencySymbols.Replace(text)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")

	switch {
	case hasDot && hasComma:
		// European: dot as thousands separator, comma as decimal.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		// A lone comma is a decimal point only when followed by two digits.
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) == 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasDot:
		// Lone dots are thousands separators in European price text.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	cleaned = nonNumeric.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

var groupedNumber = regexp.MustCompile(`\d[\d.,]*`)

// parseGroupedInt extracts the first integer from text that may use thousands
// separators, e.g. "1.234 resultados" or "Showing 1-120 of 5,678".
func parseGroupedInt(text string) (int, bool) {
	match := groupedNumber.FindString(text)
	if match == "" {
		return 0, false
	}
	match = strings.ReplaceAll(match, ".", "")
	match = strings.ReplaceAll(match, ",", "")
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
