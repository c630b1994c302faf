package dataset

import (
	"strings"
	"unicode"
)

// stopwords are query tokens too generic to steer column matching.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "what": {},
	"which": {}, "how": {}, "many": {}, "much": {}, "show": {}, "per": {},
	"total": {}, "all": {}, "are": {}, "is": {},
}

// Normalize lowercases a label and strips whitespace and punctuation so
// that "Toll Name", "toll_name", and "toll-name" compare equal.
func Normalize(label string) string {
	var b strings.Builder
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// tokenize splits free text into lowercase word tokens, dropping
// stopwords and tokens shorter than three characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MatchColumns returns the schema columns the query plausibly refers to,
// matching case-insensitively and tolerating whitespace and punctuation
// variants between the query's wording and the actual labels. The result
// preserves schema column order.
func MatchColumns(s *Schema, query string) []string {
	tokens := tokenize(query)
	normQuery := Normalize(query)

	var names []string
	for _, c := range s.Columns {
		norm := Normalize(c.Name)
		if norm == "" {
			continue
		}
		matched := strings.Contains(normQuery, norm)
		if !matched {
			// Any column-name word appearing as a query token counts:
			// "revenue by toll" should pull in "Toll Name".
			for _, w := range tokenize(c.Name) {
				for _, t := range tokens {
					if w == t {
						matched = true
						break
					}
				}
				if matched {
					break
				}
			}
		}
		if matched {
			names = append(names, c.Name)
		}
	}
	return names
}
