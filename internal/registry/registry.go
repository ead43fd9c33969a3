// Package registry accumulates GraphQL fragment and operation definitions
// scraped from many literals and emits the operations whose fragment
// dependencies can all be satisfied, each as a self-contained document.
package registry

import (
	"crypto/md5"
	"encoding/hex"
	"iter"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/s21toolkit/s21introspector/pkg/logging"
)

type fragmentRecord struct {
	def  *ast.FragmentDefinition
	refs []string
}

type operationRecord struct {
	key  string
	def  *ast.OperationDefinition
	refs []string
}

// Stats counts what the registry has seen so far.
type Stats struct {
	Literals            int
	DiscardedLiterals   int
	Fragments           int
	DuplicateFragments  int
	Operations          int
	DuplicateOperations int
}

// Registry is not safe for concurrent use.
type Registry struct {
	fragments      map[string]*fragmentRecord
	operations     map[string]*operationRecord
	operationOrder []string
	stats          Stats
	logger         logging.Logger
}

type Option func(*Registry)

func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		fragments:  make(map[string]*fragmentRecord),
		operations: make(map[string]*operationRecord),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewDiscardLogger()
	}
	return r
}

// AddLiteral parses text and registers its fragments and operations. It
// returns false when text is not a GraphQL executable document. Names that
// are already registered keep their first definition.
func (r *Registry) AddLiteral(text string) bool {
	r.stats.Literals++

	doc, err := parser.ParseQuery(&ast.Source{Input: text})
	if err != nil || len(doc.Operations)+len(doc.Fragments) == 0 {
		r.stats.DiscardedLiterals++
		entry := r.logger.WithField("literal", abbreviate(text))
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Debug("Literal discarded")
		return false
	}

	for _, def := range doc.Fragments {
		r.addFragment(def)
	}
	for _, def := range doc.Operations {
		r.addOperation(def)
	}
	return true
}

func (r *Registry) addFragment(def *ast.FragmentDefinition) {
	if _, ok := r.fragments[def.Name]; ok {
		r.stats.DuplicateFragments++
		r.logger.WithField("fragment", def.Name).Debug("Fragment found: [duplicate]")
		return
	}
	r.stats.Fragments++
	r.fragments[def.Name] = &fragmentRecord{def: def, refs: spreads(def.SelectionSet)}
	r.logger.WithField("fragment", def.Name).Debug("Fragment found")
}

func (r *Registry) addOperation(def *ast.OperationDefinition) {
	key := def.Name
	if key == "" {
		key = anonymousKey(def)
	}
	if _, ok := r.operations[key]; ok {
		r.stats.DuplicateOperations++
		r.logger.WithField("operation", key).Debug("Operation found: [duplicate]")
		return
	}
	r.stats.Operations++
	r.operations[key] = &operationRecord{key: key, def: def, refs: spreads(def.SelectionSet)}
	r.operationOrder = append(r.operationOrder, key)
	r.logger.WithField("operation", key).Debug("Operation found")
}

// anonymousKey identifies an unnamed operation by the hash of its printed
// form, so identical operations collapse and different ones coexist.
func anonymousKey(def *ast.OperationDefinition) string {
	sum := md5.Sum([]byte(format(&ast.QueryDocument{Operations: ast.OperationList{def}})))
	return hex.EncodeToString(sum[:])
}

// HasFragment reports whether a fragment with the given name is registered.
func (r *Registry) HasFragment(name string) bool {
	_, ok := r.fragments[name]
	return ok
}

// HasOperation reports whether an operation is registered under key (its
// name, or the hash of an anonymous operation).
func (r *Registry) HasOperation(key string) bool {
	_, ok := r.operations[key]
	return ok
}

func (r *Registry) Stats() Stats {
	return r.stats
}

// closure returns the transitive fragment dependencies of refs in
// breadth-first discovery order. Unregistered names are included but not
// expanded.
func (r *Registry) closure(refs []string) []string {
	queue := append([]string(nil), refs...)
	seen := make(map[string]struct{}, len(refs))
	var out []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if frag, ok := r.fragments[name]; ok {
			queue = append(queue, frag.refs...)
		}
	}
	return out
}

// ValidOperations yields, in registration order, every operation whose
// fragment closure is fully registered, as a document holding the needed
// fragments followed by the operation.
//
// With allowFragmentReuse false, a fragment already emitted earlier in the
// same iteration is left out of later documents. That state belongs to a
// single range over the sequence; ranging again starts afresh.
func (r *Registry) ValidOperations(allowFragmentReuse bool) iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		emitted := make(map[string]struct{})

		for _, key := range r.operationOrder {
			rec := r.operations[key]
			needed := r.closure(rec.refs)

			if !allowFragmentReuse {
				var kept, dropped []string
				for _, name := range needed {
					if _, ok := emitted[name]; ok {
						dropped = append(dropped, name)
						continue
					}
					kept = append(kept, name)
				}
				if len(dropped) > 0 {
					r.logger.WithFields(logging.Fields{
						"operation": key,
						"fragments": strings.Join(dropped, ", "),
					}).Debug("Discarded duplicated fragments")
				}
				needed = kept
			}

			var present, missing []string
			for _, name := range needed {
				if _, ok := r.fragments[name]; ok {
					present = append(present, name)
				} else {
					missing = append(missing, name)
				}
			}
			if len(missing) > 0 {
				r.logger.WithFields(logging.Fields{
					"operation": key,
					"present":   strings.Join(present, ", "),
					"missing":   strings.Join(missing, ", "),
				}).Warn("Invalid operation")
				continue
			}

			op := r.assemble(key, rec, needed)
			for _, name := range needed {
				emitted[name] = struct{}{}
			}

			entry := r.logger.WithField("operation", key)
			if len(needed) > 0 {
				entry = entry.WithField("fragments", strings.Join(needed, ", "))
			}
			entry.Info("Extracting operation")

			if !yield(op) {
				return
			}
		}
	}
}

// Operations collects ValidOperations into a slice.
func (r *Registry) Operations(allowFragmentReuse bool) []Operation {
	var out []Operation
	for op := range r.ValidOperations(allowFragmentReuse) {
		out = append(out, op)
	}
	return out
}

func (r *Registry) assemble(key string, rec *operationRecord, needed []string) Operation {
	fragments := make(ast.FragmentDefinitionList, 0, len(needed))
	names := make([]string, 0, len(needed))
	for i := len(needed) - 1; i >= 0; i-- {
		fragments = append(fragments, r.fragments[needed[i]].def)
		names = append(names, needed[i])
	}
	return Operation{
		Name:      key,
		Document:  &ast.QueryDocument{Operations: ast.OperationList{rec.def}, Fragments: fragments},
		Fragments: names,
	}
}

// spreads returns the distinct fragment names spread directly inside set,
// in document order.
func spreads(set ast.SelectionSet) []string {
	var names []string
	seen := make(map[string]struct{})
	var walk func(ast.SelectionSet)
	walk = func(set ast.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *ast.Field:
				walk(s.SelectionSet)
			case *ast.InlineFragment:
				walk(s.SelectionSet)
			case *ast.FragmentSpread:
				if _, ok := seen[s.Name]; !ok {
					seen[s.Name] = struct{}{}
					names = append(names, s.Name)
				}
			}
		}
	}
	walk(set)
	return names
}

func abbreviate(s string) string {
	const limit = 80
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
