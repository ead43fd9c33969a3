// Package extract selects the JavaScript literals that hold GraphQL documents.
package extract

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// LiteralSource yields literal values in document order. *jsmodule.Module
// implements it.
type LiteralSource interface {
	Literals() []string
}

// CandidateLiterals returns the literals of m that parse as GraphQL
// executable documents, in document order.
func CandidateLiterals(m LiteralSource) []string {
	var out []string
	for _, literal := range m.Literals() {
		if IsCandidate(literal) {
			out = append(out, literal)
		}
	}
	return out
}

// IsCandidate reports whether text is worth handing to the registry. Text
// starting with "{" is rejected up front: JSON objects would otherwise parse
// as anonymous shorthand queries.
func IsCandidate(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "{") {
		return false
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: text})
	if err != nil {
		return false
	}
	return len(doc.Operations)+len(doc.Fragments) > 0
}
