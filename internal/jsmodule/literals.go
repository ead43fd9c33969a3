package jsmodule

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Literals returns the decoded values of all non-empty string literals and
// the cooked text of every static template literal chunk, in document order.
// Chunks with escapes that have no cooked value are skipped.
func (m *Module) Literals() []string {
	var out []string
	walk(m.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case nodeString:
			if value, ok := m.stringValue(n); ok && value != "" {
				out = append(out, value)
			}
			return false
		case nodeTemplateString:
			out = append(out, m.templateChunks(n)...)
			// substitutions may contain nested literals
			return true
		}
		return true
	})
	return out
}

// stringValue decodes a string literal node including its escapes.
func (m *Module) stringValue(n *sitter.Node) (string, bool) {
	raw := m.text(n)
	if len(raw) < 2 {
		return "", false
	}
	return decodeEscapes(raw[1:len(raw)-1], false)
}

// templateChunks returns the cooked static chunks of a template literal.
func (m *Module) templateChunks(n *sitter.Node) []string {
	start := n.StartByte() + 1 // opening backtick
	end := n.EndByte()
	if end > start {
		end-- // closing backtick
	}

	var chunks []string
	emit := func(from, to uint32) {
		if to < from {
			return
		}
		if cooked, ok := decodeEscapes(string(m.source[from:to]), true); ok {
			chunks = append(chunks, cooked)
		}
	}

	cursor := start
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() != nodeTemplateSubstitution {
			continue
		}
		emit(cursor, child.StartByte())
		cursor = child.EndByte()
	}
	emit(cursor, end)

	return chunks
}
