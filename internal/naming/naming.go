// Package naming derives identifiers for generated TypeScript sources.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Identifier turns free text such as an operation tag into an identifier.
// A single word keeps its own casing ("pet" stays "pet", "iOS" stays "iOS").
// Characters that cannot appear in an identifier separate words, and every
// word after the first gets an upper-case start ("pet store" -> "petStore").
func Identifier(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return !isIdentRune(r) })
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		// Casers are stateful; never share one between calls.
		b.WriteString(cases.Title(language.Und, cases.NoLower).String(w))
	}
	out := b.String()
	if unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}
	return out
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// CamelTail returns the last capitalized word of a type name, lower-cased.
// Array suffixes are ignored: "CreateOrderRequest" -> "request",
// "Product[]" -> "product", "string" -> "string".
func CamelTail(typeName string) string {
	name := strings.TrimRight(typeName, "[]")
	start := 0
	for i, r := range name {
		if unicode.IsUpper(r) {
			start = i
		}
	}
	return strings.ToLower(name[start:])
}

// EnumMember builds the fallback member name for an enum value that has no
// declared name: "_" followed by the value with non-identifier characters
// replaced by "_" ("in stock" -> "_in_stock", 2 -> "_2").
func EnumMember(value string) string {
	var b strings.Builder
	b.WriteByte('_')
	for _, r := range value {
		if isIdentRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
