package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var acronyms = map[string]string{
	"id":  "ID",
	"sku": "SKU",
	"url": "URL",
	"api": "API",
}

// Label derives a header label from a record key:
//
//	lastLogin  -> Last Login
//	join_date  -> Join Date
//	user-id    -> User ID
func Label(key string) string {
	words := splitWords(key)
	caser := cases.Title(language.English, cases.NoLower)
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func splitWords(key string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}
