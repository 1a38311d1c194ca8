package util

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	combiningMarks = regexp.MustCompile(`[\x{0300}-\x{036F}]`)
	camelBoundary  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonWord        = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify turns free text into a lowercase, hyphen separated identifier.
//
//	"Sales Report (Q3)" -> "sales-report-q3"
//	"customerOrders"    -> "customer-orders"
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = combiningMarks.ReplaceAllString(s, "")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BaseName derives a dataset style name from a file path by dropping the
// directory and every extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return Slugify(base)
}
