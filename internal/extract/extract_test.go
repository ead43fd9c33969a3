package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s21toolkit/s21introspector/internal/jsmodule"
)

type literals []string

func (l literals) Literals() []string { return l }

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "named query", text: "query GetUser { user { id } }", want: true},
		{name: "fragment", text: "fragment UserFields on User { id name }", want: true},
		{name: "mutation with vars", text: "mutation Save($id: ID!) { save(id: $id) }", want: true},
		{name: "leading whitespace", text: "\n  query Q { q }\n", want: true},
		{name: "shorthand rejected", text: "{ user { id } }", want: false},
		{name: "json rejected", text: `{"a": 1}`, want: false},
		{name: "plain text", text: "hello world", want: false},
		{name: "css class", text: "btn btn-primary", want: false},
		{name: "whitespace", text: "   ", want: false},
		{name: "sdl", text: "type User { id: ID }", want: false},
		{name: "unterminated", text: "query Q { q", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCandidate(tt.text))
		})
	}
}

func TestCandidateLiteralsKeepsOrder(t *testing.T) {
	got := CandidateLiterals(literals{
		"query B { b }",
		"not graphql",
		"fragment A on T { a }",
		"{ skipped }",
	})
	assert.Equal(t, []string{"query B { b }", "fragment A on T { a }"}, got)
}

func TestCandidateLiteralsFromModule(t *testing.T) {
	src := "const a = \"query A { a }\";\n" +
		"const b = gql`\n  fragment F on T { f }\n  ${other}\n  query B { b { ...F } }\n`;\n" +
		"const c = 'label';\n"

	m, err := jsmodule.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, []string{
		"query A { a }",
		"\n  fragment F on T { f }\n  ",
		"\n  query B { b { ...F } }\n",
	}, CandidateLiterals(m))
}
