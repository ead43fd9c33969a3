// Package staticprops reads the product properties the platform publishes as
// `window.NAME = "value" || undefined` assignments in its static.js.
package staticprops

import (
	"context"
	"fmt"

	"github.com/s21toolkit/s21introspector/internal/jsmodule"
	"github.com/s21toolkit/s21introspector/internal/loader"
)

type Property struct {
	Name  string
	Value string
}

// Properties keeps the order in which names were first assigned. A name
// assigned again keeps its position and takes the new value.
type Properties struct {
	names  []string
	values map[string]string
}

func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

func (p *Properties) Set(name, value string) {
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

func (p *Properties) Get(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[name]
	return v, ok
}

func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.names...)
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Select returns the properties whose names are in selectors, in assignment
// order. No selectors selects everything.
func (p *Properties) Select(selectors ...string) []Property {
	if p == nil {
		return nil
	}
	wanted := make(map[string]bool, len(selectors))
	for _, s := range selectors {
		wanted[s] = true
	}
	out := make([]Property, 0, len(p.names))
	for _, name := range p.names {
		if len(selectors) > 0 && !wanted[name] {
			continue
		}
		out = append(out, Property{Name: name, Value: p.values[name]})
	}
	return out
}

// FromModule collects the window assignments of m.
func FromModule(m *jsmodule.Module) *Properties {
	props := New()
	for _, a := range m.WindowAssignments() {
		props.Set(a.Name, a.Value)
	}
	return props
}

// Fetch loads and parses the static script at url.
func Fetch(ctx context.Context, l loader.Loader, url string, opts ...jsmodule.ParseOption) (*Properties, error) {
	text, err := l.Load(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("load static properties: %w", err)
	}
	m, err := jsmodule.Parse(ctx, []byte(text), opts...)
	if err != nil {
		return nil, fmt.Errorf("parse static properties: %w", err)
	}
	defer m.Close()
	return FromModule(m), nil
}
