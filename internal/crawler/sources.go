package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Sources is an insertion-ordered set of source identities.
type Sources struct {
	order []string
	index map[string]struct{}
}

func NewSources(ids ...string) *Sources {
	s := &Sources{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was new.
func (s *Sources) Add(id string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *Sources) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

func (s *Sources) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// List returns the identities in insertion order.
func (s *Sources) List() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Sources) Clone() *Sources {
	if s == nil {
		return NewSources()
	}
	return NewSources(s.order...)
}

// Merge adds every identity of other not yet present.
func (s *Sources) Merge(other *Sources) {
	if other == nil {
		return
	}
	for _, id := range other.order {
		s.Add(id)
	}
}

// NormalizeURL resolves ref against base and returns its source identity:
// scheme and host lowercased, an empty path turned into "/" and the fragment
// dropped. An empty base requires ref to be absolute.
func NormalizeURL(base, ref string) (string, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parse base url %q: %w", base, err)
		}
		r = b.ResolveReference(r)
	}
	if !r.IsAbs() {
		return "", fmt.Errorf("url %q is not absolute", ref)
	}

	r.Scheme = strings.ToLower(r.Scheme)
	r.Host = strings.ToLower(r.Host)
	r.Fragment = ""
	r.RawFragment = ""
	if r.Opaque == "" && r.Path == "" && r.Host != "" {
		r.Path = "/"
	}
	return r.String(), nil
}
