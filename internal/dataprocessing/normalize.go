package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name prefixes stripped from administrative unit names.
const (
	voivodeshipMarker = "WOJ."
	voivodeshipPrefix = "woj. "
	capitalCityPrefix = "m. st. "
	powiatMarker      = "Powiat"
	powiatPrefix      = "Powiat "
	cityPrefix        = "m. "
	capitalPrefix     = "St. "
)

// lowerPolish lower-cases s using Polish casing rules.
// A Caser keeps state, so one is built per call.
func lowerPolish(s string) string {
	return cases.Lower(language.Polish).String(s)
}

// nfc returns s in Unicode normalization form C. Spreadsheets exported on
// macOS often carry decomposed diacritics, which would otherwise break key
// matching between datasets.
func nfc(s string) string {
	return norm.NFC.String(s)
}

// collapseSpace trims s and replaces internal whitespace runs, including
// non-breaking spaces, with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeVoivodeship turns "WOJ. DOLNOŚLĄSKIE" or "woj. dolnośląskie" into
// "dolnośląskie".
func normalizeVoivodeship(s string) string {
	s = lowerPolish(nfc(strings.TrimSpace(s)))
	return strings.ReplaceAll(s, voivodeshipPrefix, "")
}

// foldHeader reduces a header cell to lower-case ASCII-ish form so that
// "Województwo", "WOJEWÓDZTWO" and "Wojewodztwo" compare equal.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.NewReplacer("ł", "l", "Ł", "L").Replace(folded)
	return lowerPolish(collapseSpace(folded))
}

// findHeader returns the index of the first header that matches name after
// folding, or -1.
func findHeader(header []string, name string) int {
	want := foldHeader(name)
	for i, h := range header {
		if foldHeader(h) == want {
			return i
		}
	}
	return -1
}

// parseNumber parses a numeric cell. Polish formatting is accepted: spaces
// or non-breaking spaces group thousands and a comma marks decimals. A single
// comma followed by exactly three digits reads as an English thousands
// separator unless the digits are also grouped by spaces, so "1,234" is not a
// number. Empty and unparseable cells yield NaN.
func parseNumber(s string) float64 {
	spaced := false
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			spaced = true
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" || s == "-" {
		return math.NaN()
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if decimals := s[strings.IndexByte(s, ',')+1:]; len(decimals) == 3 && !spaced {
			return math.NaN()
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// isMissing reports whether a raw cell counts as a missing value.
func isMissing(s string) bool {
	return strings.TrimSpace(s) == ""
}
