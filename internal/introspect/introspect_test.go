package introspect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/s21toolkit/s21introspector/pkg/clients"
)

const sampleResponse = `{
  "data": {
    "__schema": {
      "queryType": {"name": "Query"},
      "mutationType": {"name": "Mutation"},
      "subscriptionType": null,
      "types": [
        {"kind": "OBJECT", "name": "Query", "description": "Root query",
         "fields": [
           {"name": "user", "description": null,
            "args": [{"name": "id", "description": null, "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "ID", "ofType": null}}, "defaultValue": null}],
            "type": {"kind": "OBJECT", "name": "User", "ofType": null}, "isDeprecated": false, "deprecationReason": null},
           {"name": "users", "description": null,
            "args": [{"name": "first", "description": null, "type": {"kind": "SCALAR", "name": "Int", "ofType": null}, "defaultValue": "10"},
                     {"name": "role", "description": null, "type": {"kind": "ENUM", "name": "Role", "ofType": null}, "defaultValue": "ADMIN"}],
            "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "LIST", "name": null, "ofType": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "OBJECT", "name": "User", "ofType": null}}}},
            "isDeprecated": false, "deprecationReason": null},
           {"name": "legacy", "description": null, "args": [],
            "type": {"kind": "SCALAR", "name": "String", "ofType": null}, "isDeprecated": true, "deprecationReason": "Use users"}
         ],
         "inputFields": null, "interfaces": [], "enumValues": null, "possibleTypes": null},
        {"kind": "OBJECT", "name": "Mutation", "description": null,
         "fields": [
           {"name": "save", "description": null,
            "args": [{"name": "input", "description": null, "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "INPUT_OBJECT", "name": "SaveInput", "ofType": null}}, "defaultValue": null}],
            "type": {"kind": "SCALAR", "name": "Boolean", "ofType": null}, "isDeprecated": false, "deprecationReason": null}
         ],
         "inputFields": null, "interfaces": [], "enumValues": null, "possibleTypes": null},
        {"kind": "INTERFACE", "name": "Node", "description": null,
         "fields": [{"name": "id", "description": null, "args": [], "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "ID", "ofType": null}}, "isDeprecated": false, "deprecationReason": null}],
         "inputFields": null, "interfaces": [], "enumValues": null, "possibleTypes": [{"kind": "OBJECT", "name": "User", "ofType": null}]},
        {"kind": "OBJECT", "name": "User", "description": null,
         "fields": [
           {"name": "id", "description": null, "args": [], "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "ID", "ofType": null}}, "isDeprecated": false, "deprecationReason": null},
           {"name": "role", "description": null, "args": [], "type": {"kind": "ENUM", "name": "Role", "ofType": null}, "isDeprecated": false, "deprecationReason": null},
           {"name": "joined", "description": null, "args": [], "type": {"kind": "SCALAR", "name": "DateTime", "ofType": null}, "isDeprecated": false, "deprecationReason": null}
         ],
         "inputFields": null, "interfaces": [{"kind": "INTERFACE", "name": "Node", "ofType": null}], "enumValues": null, "possibleTypes": null},
        {"kind": "UNION", "name": "SearchResult", "description": null, "fields": null, "inputFields": null, "interfaces": null, "enumValues": null,
         "possibleTypes": [{"kind": "OBJECT", "name": "User", "ofType": null}]},
        {"kind": "ENUM", "name": "Role", "description": null, "fields": null, "inputFields": null, "interfaces": null,
         "enumValues": [
           {"name": "ADMIN", "description": null, "isDeprecated": false, "deprecationReason": null},
           {"name": "GUEST", "description": null, "isDeprecated": true, "deprecationReason": "No longer supported"}
         ], "possibleTypes": null},
        {"kind": "INPUT_OBJECT", "name": "SaveInput", "description": null, "fields": null,
         "inputFields": [
           {"name": "name", "description": null, "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "String", "ofType": null}}, "defaultValue": null},
           {"name": "tags", "description": null, "type": {"kind": "LIST", "name": null, "ofType": {"kind": "SCALAR", "name": "String", "ofType": null}}, "defaultValue": "[\"a\"]"}
         ], "interfaces": null, "enumValues": null, "possibleTypes": null},
        {"kind": "SCALAR", "name": "DateTime", "description": "ISO timestamp", "fields": null, "inputFields": null, "interfaces": null, "enumValues": null, "possibleTypes": null},
        {"kind": "SCALAR", "name": "String", "description": null, "fields": null, "inputFields": null, "interfaces": null, "enumValues": null, "possibleTypes": null},
        {"kind": "OBJECT", "name": "__Type", "description": null, "fields": [], "inputFields": null, "interfaces": [], "enumValues": null, "possibleTypes": null}
      ],
      "directives": [
        {"name": "skip", "description": null, "locations": ["FIELD"], "args": [{"name": "if", "description": null, "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "Boolean", "ofType": null}}, "defaultValue": null}]},
        {"name": "auth", "description": null, "locations": ["FIELD_DEFINITION", "OBJECT"], "args": [{"name": "role", "description": null, "type": {"kind": "ENUM", "name": "Role", "ofType": null}, "defaultValue": "GUEST"}]}
      ]
    }
  }
}`

func decodeSample(t *testing.T) *Schema {
	t.Helper()
	schema, err := Decode([]byte(sampleResponse))
	require.NoError(t, err)
	return schema
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"errors": [{"message": "not authorized"}], "data": null}`))
	require.ErrorIs(t, err, ErrGraphQL)
	assert.Contains(t, err.Error(), "not authorized")

	_, err = Decode([]byte(`{"data": {}}`))
	require.ErrorIs(t, err, ErrGraphQL)

	_, err = Decode([]byte(`<html>`))
	require.Error(t, err)
}

func TestDocumentSkipsBuiltins(t *testing.T) {
	doc := decodeSample(t).Document()

	var names []string
	for _, def := range doc.Definitions {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"Query", "Mutation", "Node", "User", "SearchResult", "Role", "SaveInput", "DateTime"}, names)

	require.Len(t, doc.Directives, 1)
	assert.Equal(t, "auth", doc.Directives[0].Name)
	assert.Empty(t, doc.Schema, "conventional root names need no schema block")
}

func TestPrintSDL(t *testing.T) {
	sdl := PrintSDL(decodeSample(t))

	assert.Contains(t, sdl, "directive @auth(role: Role = GUEST) on FIELD_DEFINITION | OBJECT")
	assert.Contains(t, sdl, "users(first: Int = 10, role: Role = ADMIN): [User!]!")
	assert.Contains(t, sdl, `legacy: String @deprecated(reason: "Use users")`)
	assert.Contains(t, sdl, "GUEST @deprecated\n")
	assert.Contains(t, sdl, "type User implements Node {")
	assert.Contains(t, sdl, "union SearchResult = User")
	assert.Contains(t, sdl, `tags: [String] = ["a"]`)
	assert.Contains(t, sdl, "scalar DateTime")
	assert.NotContains(t, sdl, "__Type")
	assert.NotContains(t, sdl, "scalar String")
	assert.NotContains(t, sdl, "directive @skip")
	assert.NotContains(t, sdl, "\n\n\n")

	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.gql", Input: sdl})
	require.NoError(t, err)
	assert.NotNil(t, schema.Types["User"])
	assert.Equal(t, "Query", schema.Query.Name)
	assert.Equal(t, "Mutation", schema.Mutation.Name)
}

func TestPrintSDLCustomRoots(t *testing.T) {
	schema := &Schema{
		QueryType: &NamedRef{Name: "RootQuery"},
		Types: []FullType{{
			Kind: "OBJECT",
			Name: "RootQuery",
			Fields: []Field{{
				Name: "ping",
				Type: TypeRef{Kind: "SCALAR", Name: strPtr("String")},
			}},
		}},
	}

	sdl := PrintSDL(schema)
	assert.Contains(t, sdl, "schema {\n  query: RootQuery\n}")

	loaded, err := gqlparser.LoadSchema(&ast.Source{Input: sdl})
	require.NoError(t, err)
	assert.Equal(t, "RootQuery", loaded.Query.Name)
}

func strPtr(s string) *string { return &s }

func TestClientFetch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]string
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, Query, body["query"])

		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("secret"), WithHTTPExecutorConfig(clients.HTTPExecutorConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
	}))
	schema, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Query", schema.QueryType.Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientFetchUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Fetch(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "missing token")
}

func TestQueryParses(t *testing.T) {
	doc, err := parser.ParseQuery(&ast.Source{Input: Query})
	require.NoError(t, err)
	assert.Len(t, doc.Operations, 1)
	assert.Len(t, doc.Fragments, 3)
}
