package jsmodule

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultScriptExtensions are the specifier suffixes treated as script imports.
var DefaultScriptExtensions = []string{".js"}

// Imports returns the specifiers of static import declarations and dynamic
// import() calls whose literal source ends with one of the given extensions.
// Specifiers are returned in document order; duplicates are kept.
func (m *Module) Imports(extensions ...string) []string {
	if len(extensions) == 0 {
		extensions = DefaultScriptExtensions
	}

	var specifiers []string
	collect := func(n *sitter.Node) {
		if n == nil || n.Type() != nodeString {
			return
		}
		value, ok := m.stringValue(n)
		if !ok || !hasAnySuffix(value, extensions) {
			return
		}
		specifiers = append(specifiers, value)
	}

	walk(m.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case nodeImportStatement:
			collect(n.ChildByFieldName("source"))
			return false
		case nodeCallExpression:
			fn := n.ChildByFieldName("function")
			if fn == nil || fn.Type() != nodeImport {
				return true
			}
			if args := n.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() > 0 {
				collect(args.NamedChild(0))
			}
		}
		return true
	})

	return specifiers
}

func hasAnySuffix(value string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(value, suffix) {
			return true
		}
	}
	return false
}
