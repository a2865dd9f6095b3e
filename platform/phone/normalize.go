// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	defaultRegion = "IN"
	countryCode   = "91"
)

// minMatchDigits is the length floor applied by MatchStrict. Directory
// sheets occasionally hold truncated numbers that would otherwise match
// almost anything once prefixes are stripped.
const minMatchDigits = 10

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Clean strips whitespace, hyphens, dots and parentheses from a
// phone-number-like string.
func Clean(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '.', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// Variants produces the ordered set of canonical spellings of a
// phone-number-like string. Two numbers refer to the same line when
// their variant sets intersect.
func Variants(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	cleaned := Clean(trimmed)

	var out []string
	seen := make(map[string]struct{}, 8)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(trimmed)
	add(cleaned)

	if rest, ok := strings.CutPrefix(cleaned, "+"+countryCode); ok {
		add(rest)
	}
	if rest, ok := strings.CutPrefix(cleaned, "+"); ok {
		add(rest)
	}
	// A bare country-code prefix is only stripped when enough digits
	// remain; local numbers can legitimately start with the same digits.
	if strings.HasPrefix(cleaned, countryCode) && len(cleaned) >= len(countryCode)+minMatchDigits {
		add(cleaned[len(countryCode):])
	}
	if rest, ok := strings.CutPrefix(cleaned, "0"); ok {
		add(rest)
	}

	if e164 := NormalizeE164(trimmed); strings.HasPrefix(e164, "+") {
		add(e164)
		add(strings.TrimPrefix(e164, "+"))
	}

	return out
}

// Match reports whether two phone-number-like strings resolve to the
// same line under any canonical spelling.
func Match(a, b string) bool {
	bVariants := Variants(b)
	if len(bVariants) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(bVariants))
	for _, v := range bVariants {
		set[v] = struct{}{}
	}
	for _, v := range Variants(a) {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// MatchStrict is Match with a length floor on both numbers. Used for
// greeting lookups where truncated directory entries must not match.
func MatchStrict(a, b string) bool {
	if len(strings.TrimPrefix(Clean(a), "+")) < minMatchDigits {
		return false
	}
	if len(strings.TrimPrefix(Clean(b), "+")) < minMatchDigits {
		return false
	}
	return Match(a, b)
}

// RepairCell recovers the logical columns from a contact cell that has
// absorbed its neighbours as a single comma-joined string. It returns
// up to four trimmed positional parts. When the cell holds no comma it
// stands alone and the adjacent column (when non-empty) supplies the
// second part.
func RepairCell(cell, adjacent string) []string {
	if strings.Contains(cell, ",") {
		split := strings.SplitN(cell, ",", 4)
		parts := make([]string, 0, len(split))
		for _, p := range split {
			parts = append(parts, strings.TrimSpace(p))
		}
		return parts
	}

	if strings.TrimSpace(adjacent) != "" {
		return []string{strings.TrimSpace(cell), strings.TrimSpace(adjacent)}
	}
	return []string{strings.TrimSpace(cell)}
}
