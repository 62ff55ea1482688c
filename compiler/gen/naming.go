package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules = inflect.NewDefaultRuleset()
	title = cases.Title(language.Und, cases.NoLower)
)

// Words splits an identifier into words at underscores, dashes, spaces,
// dots and case boundaries. Runs of capitals stay together ("HTTPCode" is
// "HTTP", "Code").
func Words(s string) []string {
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
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := cur[len(cur)-1]
			next := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if !unicode.IsUpper(prev) || next {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Pascal joins the words of s, each title-cased ("order_line" is "OrderLine").
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(title.String(strings.ToLower(w)))
	}
	return b.String()
}

// Camel is Pascal with a lower-case first word.
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return p
	}
	rs := []rune(p)
	rs[0] = unicode.ToLower(rs[0])
	return string(rs)
}

// Snake joins the lower-cased words of s with underscores.
func Snake(s string) string {
	ws := Words(s)
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	return strings.Join(ws, "_")
}

// Singular returns the singular form of an English noun.
func Singular(s string) string { return rules.Singularize(s) }

// TypeNameFor derives a type name from a source object name:
// "order_lines" and "OrderLines" both become "OrderLine".
func TypeNameFor(source string) string {
	ws := Words(source)
	if len(ws) == 0 {
		return ""
	}
	ws[len(ws)-1] = Singular(strings.ToLower(ws[len(ws)-1]))
	return Pascal(strings.Join(ws, "_"))
}
