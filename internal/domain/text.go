package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// NationalIDLength is the number of digits in a CPF.
const NationalIDLength = 11

// OnlyDigits strips every non-digit character.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeNationalID keeps only the digits of a CPF as typed by a user.
func NormalizeNationalID(raw string) string {
	return OnlyDigits(raw)
}

// ValidNationalID reports whether id is exactly 11 digits.
func ValidNationalID(id string) bool {
	return len(id) == NationalIDLength && OnlyDigits(id) == id
}

// NormalizePlate uppercases a licence plate and drops anything outside [A-Z0-9].
func NormalizePlate(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatNationalID renders an 11-digit CPF as ###.###.###-##. Other input is
// returned unchanged.
func FormatNationalID(id string) string {
	if !ValidNationalID(id) {
		return id
	}
	return id[0:3] + "." + id[3:6] + "." + id[6:9] + "-" + id[9:11]
}

// FormatPlate inserts the dash of the old Brazilian layout (ABC-1234) when the
// plate starts with three letters followed by a digit.
func FormatPlate(plate string) string {
	if len(plate) <= 3 {
		return plate
	}
	for i := 0; i < 3; i++ {
		if plate[i] < 'A' || plate[i] > 'Z' {
			return plate
		}
	}
	if plate[3] < '0' || plate[3] > '9' {
		return plate
	}
	return plate[:3] + "-" + plate[3:]
}

// FoldMatcher matches one search term against many values ignoring case.
// The term is folded once; a matcher is not safe for concurrent use.
type FoldMatcher struct {
	folder cases.Caser
	term   string
	plate  string
}

// NewFoldMatcher prepares term for repeated comparisons.
func NewFoldMatcher(term string) *FoldMatcher {
	folder := cases.Fold()
	return &FoldMatcher{
		folder: folder,
		term:   folder.String(term),
		plate:  NormalizePlate(term),
	}
}

// Contains reports whether the term occurs in s ignoring case.
func (m *FoldMatcher) Contains(s string) bool {
	return strings.Contains(m.folder.String(s), m.term)
}

// MatchesPlate compares plates without separators, so "ABC-1234" and
// "abc1234" find the same vehicle in either stored form.
func (m *FoldMatcher) MatchesPlate(plate string) bool {
	if plate == "" {
		return false
	}
	if m.Contains(plate) {
		return true
	}
	return m.plate != "" && strings.Contains(NormalizePlate(plate), m.plate)
}

// MatchesDigits reports whether the digits of term occur in nationalID. A term
// without digits never matches.
func MatchesDigits(nationalID, term string) bool {
	digits := OnlyDigits(term)
	if digits == "" {
		return false
	}
	return strings.Contains(OnlyDigits(nationalID), digits)
}
