package loader

import (
	"context"
	"sort"
)

// Table is a preloaded map from exact URL to source text.
type Table map[string]string

func (t Table) Load(_ context.Context, url string) (string, error) {
	if text, ok := t[url]; ok {
		return text, nil
	}
	return "", &notFoundError{url: url}
}

// Has reports whether url is preloaded.
func (t Table) Has(url string) bool {
	_, ok := t[url]
	return ok
}

// URLs returns the preloaded URLs in lexical order.
func (t Table) URLs() []string {
	urls := make([]string, 0, len(t))
	for u := range t {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Merge returns a new table holding both sets of entries; t wins on conflicts.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range other {
		out[k] = v
	}
	for k, v := range t {
		out[k] = v
	}
	return out
}
