package introspect

import (
	"bytes"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

const defaultDeprecationReason = "No longer supported"

var builtinScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

var builtinDirectives = map[string]bool{
	"include":     true,
	"skip":        true,
	"deprecated":  true,
	"specifiedBy": true,
	"oneOf":       true,
	"defer":       true,
}

// Document converts the introspection result to an SDL document. Built-in
// scalars and directives and introspection types are omitted.
func (s *Schema) Document() *ast.SchemaDocument {
	doc := &ast.SchemaDocument{}

	if def := s.schemaDefinition(); def != nil {
		doc.Schema = ast.SchemaDefinitionList{def}
	}

	for _, d := range s.Directives {
		if builtinDirectives[d.Name] {
			continue
		}
		locations := make([]ast.DirectiveLocation, 0, len(d.Locations))
		for _, l := range d.Locations {
			locations = append(locations, ast.DirectiveLocation(l))
		}
		doc.Directives = append(doc.Directives, &ast.DirectiveDefinition{
			Description: deref(d.Description),
			Name:        d.Name,
			Arguments:   argumentDefinitions(d.Args),
			Locations:   locations,
			// the formatter inspects Position.Src to skip built-ins
			Position: &ast.Position{Src: &ast.Source{}},
		})
	}

	for _, t := range s.Types {
		if strings.HasPrefix(t.Name, "__") || (t.Kind == string(ast.Scalar) && builtinScalars[t.Name]) {
			continue
		}
		doc.Definitions = append(doc.Definitions, definition(t))
	}

	return doc
}

// schemaDefinition is only needed when a root type deviates from the
// conventional Query/Mutation/Subscription names.
func (s *Schema) schemaDefinition() *ast.SchemaDefinition {
	roots := []struct {
		op   ast.Operation
		ref  *NamedRef
		conv string
	}{
		{ast.Query, s.QueryType, "Query"},
		{ast.Mutation, s.MutationType, "Mutation"},
		{ast.Subscription, s.SubscriptionType, "Subscription"},
	}

	conventional := true
	var ops ast.OperationTypeDefinitionList
	for _, root := range roots {
		if root.ref == nil || root.ref.Name == "" {
			continue
		}
		if root.ref.Name != root.conv {
			conventional = false
		}
		ops = append(ops, &ast.OperationTypeDefinition{Operation: root.op, Type: root.ref.Name})
	}
	if conventional || len(ops) == 0 {
		return nil
	}
	return &ast.SchemaDefinition{OperationTypes: ops}
}

func definition(t FullType) *ast.Definition {
	def := &ast.Definition{
		Kind:        ast.DefinitionKind(t.Kind),
		Name:        t.Name,
		Description: deref(t.Description),
	}

	switch def.Kind {
	case ast.Object, ast.Interface:
		for _, iface := range t.Interfaces {
			if name := namedType(iface); name != "" {
				def.Interfaces = append(def.Interfaces, name)
			}
		}
		for _, f := range t.Fields {
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Description: deref(f.Description),
				Name:        f.Name,
				Arguments:   argumentDefinitions(f.Args),
				Type:        typeOf(f.Type),
				Directives:  deprecation(f.IsDeprecated, f.DeprecationReason),
			})
		}
	case ast.InputObject:
		for _, f := range t.InputFields {
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Description:  deref(f.Description),
				Name:         f.Name,
				Type:         typeOf(f.Type),
				DefaultValue: defaultValue(f.DefaultValue),
			})
		}
	case ast.Union:
		for _, pt := range t.PossibleTypes {
			if name := namedType(pt); name != "" {
				def.Types = append(def.Types, name)
			}
		}
	case ast.Enum:
		for _, v := range t.EnumValues {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
				Description: deref(v.Description),
				Name:        v.Name,
				Directives:  deprecation(v.IsDeprecated, v.DeprecationReason),
			})
		}
	}

	return def
}

func argumentDefinitions(args []InputValue) ast.ArgumentDefinitionList {
	if len(args) == 0 {
		return nil
	}
	out := make(ast.ArgumentDefinitionList, 0, len(args))
	for _, a := range args {
		out = append(out, &ast.ArgumentDefinition{
			Description:  deref(a.Description),
			Name:         a.Name,
			Type:         typeOf(a.Type),
			DefaultValue: defaultValue(a.DefaultValue),
		})
	}
	return out
}

func deprecation(deprecated bool, reason *string) ast.DirectiveList {
	if !deprecated {
		return nil
	}
	dir := &ast.Directive{Name: "deprecated"}
	if reason != nil && *reason != defaultDeprecationReason {
		dir.Arguments = ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: *reason},
		}}
	}
	return ast.DirectiveList{dir}
}

func typeOf(ref TypeRef) *ast.Type {
	switch ref.Kind {
	case "NON_NULL":
		if ref.OfType == nil {
			return ast.NamedType("", nil)
		}
		inner := typeOf(*ref.OfType)
		inner.NonNull = true
		return inner
	case "LIST":
		if ref.OfType == nil {
			return ast.ListType(ast.NamedType("", nil), nil)
		}
		return ast.ListType(typeOf(*ref.OfType), nil)
	default:
		return ast.NamedType(deref(ref.Name), nil)
	}
}

func namedType(ref TypeRef) string {
	for r := &ref; r != nil; r = r.OfType {
		if r.Name != nil {
			return *r.Name
		}
	}
	return ""
}

// defaultValue turns the GraphQL literal reported by introspection into an
// AST value by parsing it as an argument. Literals that fail to parse are
// kept verbatim.
func defaultValue(raw *string) *ast.Value {
	if raw == nil {
		return nil
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: "{ f(v: " + *raw + ") }"})
	if err == nil && len(doc.Operations) == 1 && len(doc.Operations[0].SelectionSet) == 1 {
		if field, ok := doc.Operations[0].SelectionSet[0].(*ast.Field); ok && len(field.Arguments) == 1 {
			return field.Arguments[0].Value
		}
	}
	return &ast.Value{Kind: ast.EnumValue, Raw: *raw}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PrintSDL renders the schema with one blank line between definitions.
func PrintSDL(s *Schema) string {
	doc := s.Document()
	var parts []string
	emit := func(part *ast.SchemaDocument) {
		var buf bytes.Buffer
		formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchemaDocument(part)
		if text := strings.TrimSpace(buf.String()); text != "" {
			parts = append(parts, text)
		}
	}

	if len(doc.Schema) > 0 {
		emit(&ast.SchemaDocument{Schema: doc.Schema})
	}
	for _, d := range doc.Directives {
		emit(&ast.SchemaDocument{Directives: ast.DirectiveDefinitionList{d}})
	}
	for _, d := range doc.Definitions {
		emit(&ast.SchemaDocument{Definitions: ast.DefinitionList{d}})
	}
	return strings.Join(parts, "\n\n")
}
