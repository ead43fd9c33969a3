// Package harvest drives crawls over a set of entry points and feeds every
// GraphQL literal found along the way into an operation registry.
package harvest

import (
	"context"
	"fmt"

	"github.com/s21toolkit/s21introspector/internal/crawler"
	"github.com/s21toolkit/s21introspector/internal/extract"
	"github.com/s21toolkit/s21introspector/internal/jsmodule"
	"github.com/s21toolkit/s21introspector/internal/loader"
	"github.com/s21toolkit/s21introspector/internal/registry"
	"github.com/s21toolkit/s21introspector/pkg/logging"
)

// Entries are the crawl roots. Pages are crawled before scripts.
type Entries struct {
	Pages   []string
	Scripts []string
}

func (e Entries) Len() int {
	return len(e.Pages) + len(e.Scripts)
}

// FromHAR adds the pages and scripts captured in har to the base pages and
// returns a table preloaded with their bodies. Captured URLs are ordered
// lexically so runs over the same capture are reproducible.
func FromHAR(har *loader.HAR, pages ...string) (Entries, loader.Table) {
	documents := har.TextEntries(loader.MimeHTML)
	scripts := har.TextEntries(loader.MimeJavaScript)

	entries := Entries{Pages: dedupe(append(append([]string(nil), pages...), documents.URLs()...))}
	entries.Scripts = scripts.URLs()

	return entries, documents.Merge(scripts)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Stats summarizes a run.
type Stats struct {
	Entries  int
	Failed   int
	Modules  int
	Literals int
}

type Harvester struct {
	Crawler  *crawler.Crawler
	Registry *registry.Registry
	Logger   logging.Logger
	// Preloaded marks sources served from a capture in the logs.
	Preloaded loader.Table

	stats Stats
}

// Run crawls every entry, sharing one visited set across them. A failure of
// the first entry is returned; later entries that fail are logged and
// skipped.
func (h *Harvester) Run(ctx context.Context, entries Entries) (*crawler.Sources, error) {
	logger := h.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	visited := crawler.NewSources()
	visit := h.visitor(logger)

	type root struct {
		url  string
		page bool
	}
	roots := make([]root, 0, entries.Len())
	for _, p := range entries.Pages {
		roots = append(roots, root{url: p, page: true})
	}
	for _, s := range entries.Scripts {
		roots = append(roots, root{url: s})
	}

	for i, r := range roots {
		h.stats.Entries++
		crawl := h.Crawler.FromScript
		if r.page {
			crawl = h.Crawler.FromPage
		}

		found, err := crawl(ctx, r.url, visit, crawler.WithVisited(visited))
		if found != nil {
			visited.Merge(found)
		}
		if err != nil {
			if ctx.Err() != nil {
				return visited, ctx.Err()
			}
			if i == 0 {
				return visited, fmt.Errorf("crawl %s: %w", r.url, err)
			}
			h.stats.Failed++
			logger.WithField("entry", r.url).WithError(err).Warn("Entry point failed, skipping")
		}
	}

	logger.WithFields(logging.Fields{
		"entries":  h.stats.Entries,
		"failed":   h.stats.Failed,
		"modules":  h.stats.Modules,
		"literals": h.stats.Literals,
		"sources":  visited.Len(),
	}).Info("Harvest complete")
	return visited, nil
}

func (h *Harvester) visitor(logger logging.Logger) crawler.Visitor {
	return func(m *jsmodule.Module, _ string, source string) {
		h.stats.Modules++
		literals := extract.CandidateLiterals(m)
		h.stats.Literals += len(literals)

		logger.WithFields(logging.Fields{
			"source":    source,
			"preloaded": h.Preloaded.Has(source),
			"literals":  len(literals),
		}).Info("Scraping queries")

		for _, literal := range literals {
			h.Registry.AddLiteral(literal)
		}
	}
}

func (h *Harvester) Stats() Stats {
	return h.stats
}
