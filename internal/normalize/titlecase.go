package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TitleCase upper-cases the first letter of each whitespace-separated word
// and leaves every other character untouched. "etanercept 50 mg" becomes
// "Etanercept 50 Mg", and "(anca)" stays "(anca)" because its first rune is
// not a letter. PBS drug names keep their internal casing on purpose.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
