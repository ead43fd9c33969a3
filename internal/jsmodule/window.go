package jsmodule

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Assignment is a `window.Name = "value" || undefined` statement.
type Assignment struct {
	Name  string
	Value string
}

// WindowAssignments returns the window properties assigned a string literal
// guarded by `|| undefined`, the shape build tooling uses to inline
// environment values. Assignments are returned in document order.
func (m *Module) WindowAssignments() []Assignment {
	var out []Assignment
	walk(m.root, func(n *sitter.Node) bool {
		if n.Type() != nodeAssignment {
			return true
		}
		if a, ok := m.windowAssignment(n); ok {
			out = append(out, a)
		}
		return true
	})
	return out
}

func (m *Module) windowAssignment(n *sitter.Node) (Assignment, bool) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil {
		return Assignment{}, false
	}

	if left.Type() != nodeMemberExpression {
		return Assignment{}, false
	}
	object := left.ChildByFieldName("object")
	property := left.ChildByFieldName("property")
	if object == nil || property == nil || object.Type() != nodeIdentifier || m.text(object) != "window" {
		return Assignment{}, false
	}

	if right.Type() != nodeBinaryExpression {
		return Assignment{}, false
	}
	operator := right.ChildByFieldName("operator")
	value := right.ChildByFieldName("left")
	fallback := right.ChildByFieldName("right")
	if operator == nil || operator.Type() != "||" || value == nil || fallback == nil {
		return Assignment{}, false
	}
	if value.Type() != nodeString || !isUndefined(m, fallback) {
		return Assignment{}, false
	}

	decoded, ok := m.stringValue(value)
	if !ok {
		return Assignment{}, false
	}
	return Assignment{Name: m.text(property), Value: decoded}, true
}

func isUndefined(m *Module, n *sitter.Node) bool {
	switch n.Type() {
	case nodeUndefined:
		return true
	case nodeIdentifier:
		return m.text(n) == "undefined"
	}
	return false
}
