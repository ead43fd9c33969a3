// Package jsmodule parses JavaScript sources with tree-sitter and exposes the
// few syntactic facts the crawler and the literal extractor need: import
// specifiers, string/template literal values and window property assignments.
package jsmodule

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

const defaultMaxSourceBytes = 32 << 20 // 32 MB

var (
	// ErrSyntax is returned by Parse in strict mode when the tree contains
	// error or missing nodes.
	ErrSyntax = errors.New("javascript syntax error")
	// ErrSourceTooLarge is returned when the source exceeds the configured limit.
	ErrSourceTooLarge = errors.New("javascript source too large")
)

// Node kinds of the tree-sitter JavaScript grammar used by this package.
const (
	nodeImportStatement      = "import_statement"
	nodeCallExpression       = "call_expression"
	nodeImport               = "import"
	nodeString               = "string"
	nodeTemplateString       = "template_string"
	nodeTemplateSubstitution = "template_substitution"
	nodeAssignment           = "assignment_expression"
	nodeMemberExpression     = "member_expression"
	nodeBinaryExpression     = "binary_expression"
	nodeIdentifier           = "identifier"
	nodeUndefined            = "undefined"
)

type parseOptions struct {
	lenient        bool
	maxSourceBytes int
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

// WithLenient accepts trees that contain syntax errors instead of failing.
func WithLenient() ParseOption {
	return func(o *parseOptions) { o.lenient = true }
}

// WithMaxSourceBytes overrides the maximum accepted source size.
func WithMaxSourceBytes(n int) ParseOption {
	return func(o *parseOptions) { o.maxSourceBytes = n }
}

// Module is a parsed JavaScript source. It owns a tree-sitter tree and must
// be closed once the caller is done with it.
type Module struct {
	tree   *sitter.Tree
	root   *sitter.Node
	source []byte
}

// Parse parses text as a JavaScript module.
func Parse(ctx context.Context, text []byte, opts ...ParseOption) (*Module, error) {
	options := parseOptions{maxSourceBytes: defaultMaxSourceBytes}
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxSourceBytes > 0 && len(text) > options.maxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, len(text))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, text)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	root := tree.RootNode()
	if !options.lenient && root.HasError() {
		defer tree.Close()
		if bad := firstErrorNode(root); bad != nil {
			p := bad.StartPoint()
			return nil, fmt.Errorf("%w at %d:%d", ErrSyntax, p.Row+1, p.Column+1)
		}
		return nil, ErrSyntax
	}

	return &Module{tree: tree, root: root, source: text}, nil
}

// Root returns the root node of the syntax tree.
func (m *Module) Root() *sitter.Node {
	return m.root
}

// Source returns the raw text the module was parsed from.
func (m *Module) Source() []byte {
	return m.source
}

// Close releases the underlying tree. The module must not be used afterwards.
func (m *Module) Close() {
	if m == nil || m.tree == nil {
		return
	}
	m.tree.Close()
	m.tree = nil
	m.root = nil
}

func (m *Module) text(n *sitter.Node) string {
	return n.Content(m.source)
}

// walk visits every node in document order. Returning false from fn skips
// the node's children.
func walk(root *sitter.Node, fn func(*sitter.Node) bool) {
	if root == nil {
		return
	}
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(node) {
			continue
		}
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			if child := node.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

func firstErrorNode(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}
