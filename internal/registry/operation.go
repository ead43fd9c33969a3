package registry

import (
	"bytes"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// Operation is a self-contained executable document.
type Operation struct {
	// Name is the operation name, or a content hash for anonymous operations.
	Name     string
	Document *ast.QueryDocument
	// Fragments lists the included fragment names in output order.
	Fragments []string
}

// String prints the fragments followed by the operation, one blank line
// between definitions.
func (o Operation) String() string {
	if o.Document == nil {
		return ""
	}
	parts := make([]string, 0, len(o.Document.Fragments)+len(o.Document.Operations))
	for _, frag := range o.Document.Fragments {
		parts = append(parts, strings.TrimSpace(format(&ast.QueryDocument{Fragments: ast.FragmentDefinitionList{frag}})))
	}
	for _, op := range o.Document.Operations {
		parts = append(parts, strings.TrimSpace(format(&ast.QueryDocument{Operations: ast.OperationList{op}})))
	}
	return strings.Join(parts, "\n\n")
}

func format(doc *ast.QueryDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatQueryDocument(doc)
	return buf.String()
}
