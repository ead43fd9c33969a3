package registry

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func names(ops []Operation) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Name)
	}
	return out
}

func TestSingleOperationWithFragment(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("fragment UserFields on User { id name }"))
	require.True(t, r.AddLiteral("query GetUser { user { ...UserFields } }"))

	ops := r.Operations(true)
	require.Len(t, ops, 1)
	assert.Equal(t, "GetUser", ops[0].Name)
	assert.Equal(t, []string{"UserFields"}, ops[0].Fragments)
	assert.Equal(t, `fragment UserFields on User {
  id
  name
}

query GetUser {
  user {
    ... UserFields
  }
}`, ops[0].String())
}

func TestMissingFragmentSkipsOperation(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("query GetUser { user { ...Missing } }"))

	assert.Empty(t, r.Operations(true))
	assert.Empty(t, r.Operations(false))
}

func TestTransitiveClosure(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral(`
		fragment F1 on User { id ...F2 }
		fragment F2 on User { name }
		query Q { user { ...F1 } }
	`))

	ops := r.Operations(true)
	require.Len(t, ops, 1)
	assert.Equal(t, []string{"F2", "F1"}, ops[0].Fragments, "deepest dependency first")
	require.Len(t, ops[0].Document.Operations, 1)
	assert.Equal(t, "Q", ops[0].Document.Operations[0].Name)

	// the printed document must be self-contained
	_, err := parser.ParseQuery(&ast.Source{Input: ops[0].String()})
	require.NoError(t, err)
}

func TestTransitiveMissingFragment(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("fragment F1 on User { id ...F2 }"))
	require.True(t, r.AddLiteral("query Q { user { ...F1 } }"))

	assert.Empty(t, r.Operations(true))
}

func TestFragmentCycleTerminates(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral(`
		fragment A on T { a ...B }
		fragment B on T { b ...A }
		query Q { t { ...A } }
	`))

	ops := r.Operations(true)
	require.Len(t, ops, 1)
	assert.ElementsMatch(t, []string{"A", "B"}, ops[0].Fragments)
}

func TestDeduplicationToggle(t *testing.T) {
	build := func() *Registry {
		r := New()
		require.True(t, r.AddLiteral("fragment Shared on T { id }"))
		require.True(t, r.AddLiteral("query First { a { ...Shared } }"))
		require.True(t, r.AddLiteral("query Second { b { ...Shared } }"))
		return r
	}

	reuse := build().Operations(true)
	require.Len(t, reuse, 2)
	assert.Equal(t, []string{"Shared"}, reuse[0].Fragments)
	assert.Equal(t, []string{"Shared"}, reuse[1].Fragments)

	dedup := build().Operations(false)
	require.Len(t, dedup, 2)
	assert.Equal(t, []string{"Shared"}, dedup[0].Fragments)
	assert.Empty(t, dedup[1].Fragments)
	assert.Empty(t, dedup[1].Document.Fragments)
}

func TestDeduplicationStateIsPerIteration(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("fragment Shared on T { id }"))
	require.True(t, r.AddLiteral("query First { a { ...Shared } }"))
	require.True(t, r.AddLiteral("query Second { b { ...Shared } }"))

	first := r.Operations(false)
	second := r.Operations(false)
	assert.Equal(t, first[0].Fragments, second[0].Fragments)
	assert.Equal(t, []string{"Shared"}, second[0].Fragments)
}

func TestValidOperationsStopsEarly(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("query A { a } query B { b } query C { c }"))

	var seen []string
	for op := range r.ValidOperations(true) {
		seen = append(seen, op.Name)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestRegistrationOrder(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("query Zeta { z }"))
	require.True(t, r.AddLiteral("mutation Alpha { a }"))
	require.True(t, r.AddLiteral("subscription Mid { m }"))

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names(r.Operations(true)))
}

func TestFirstDefinitionWins(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("fragment F on T { first }"))
	require.True(t, r.AddLiteral("fragment F on T { second }"))
	require.True(t, r.AddLiteral("query Q { t { ...F } }"))
	require.True(t, r.AddLiteral("query Q { other }"))

	ops := r.Operations(true)
	require.Len(t, ops, 1)
	assert.Contains(t, ops[0].String(), "first")
	assert.NotContains(t, ops[0].String(), "second")
	assert.NotContains(t, ops[0].String(), "other")

	stats := r.Stats()
	assert.Equal(t, 1, stats.Fragments)
	assert.Equal(t, 1, stats.DuplicateFragments)
	assert.Equal(t, 1, stats.Operations)
	assert.Equal(t, 1, stats.DuplicateOperations)
}

func TestAnonymousOperationIdentity(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral("{ viewer { id } }"))
	require.True(t, r.AddLiteral("query {\n  viewer {\n    id\n  }\n}"))
	require.True(t, r.AddLiteral("{ viewer { name } }"))

	ops := r.Operations(true)
	require.Len(t, ops, 2)
	assert.NotEqual(t, ops[0].Name, ops[1].Name)
	assert.Len(t, ops[0].Name, 32)
	assert.True(t, r.HasOperation(ops[0].Name))
	assert.Equal(t, 1, r.Stats().DuplicateOperations)
}

func TestAddLiteralRejectsInvalid(t *testing.T) {
	r := New()
	assert.False(t, r.AddLiteral("not graphql"))
	assert.False(t, r.AddLiteral("   "))
	assert.False(t, r.AddLiteral("type User { id: ID }"))
	assert.Equal(t, 3, r.Stats().DiscardedLiterals)
	assert.Empty(t, r.Operations(true))
}

func TestSpreadsInsideInlineFragments(t *testing.T) {
	r := New()
	require.True(t, r.AddLiteral(`
		fragment Extra on Admin { level }
		query Q { node { ... on Admin { ...Extra } ...Extra } }
	`))

	ops := r.Operations(true)
	require.Len(t, ops, 1)
	assert.Equal(t, []string{"Extra"}, ops[0].Fragments)
	assert.True(t, r.HasFragment("Extra"))
}

func TestInvalidOperationIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r := New(WithLogger(logger))
	require.True(t, r.AddLiteral("fragment Have on T { a ...Lost }"))
	require.True(t, r.AddLiteral("query Q { t { ...Have } }"))
	assert.Empty(t, r.Operations(true))

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message != "Invalid operation" {
			continue
		}
		found = true
		assert.Equal(t, "Q", entry.Data["operation"])
		assert.Equal(t, "Have", entry.Data["present"])
		assert.Equal(t, "Lost", entry.Data["missing"])
	}
	assert.True(t, found)
}
