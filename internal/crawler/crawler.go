// Package crawler walks the graph of JavaScript modules reachable from a web
// page or a script entry point.
package crawler

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/s21toolkit/s21introspector/internal/jsmodule"
	"github.com/s21toolkit/s21introspector/internal/loader"
	"github.com/s21toolkit/s21introspector/pkg/logging"
)

// Visitor is called once per visited module, synchronously. The module is
// closed when the visitor returns and must not be retained.
type Visitor func(m *jsmodule.Module, text, source string)

type settings struct {
	loader     loader.Loader
	visited    *Sources
	extensions []string
	parseOpts  []jsmodule.ParseOption
	logger     logging.Logger
}

type Option func(*settings)

// WithVisited seeds the crawl with sources that must not be visited again.
// The set is copied; the caller's set is never modified.
func WithVisited(visited *Sources) Option {
	return func(s *settings) { s.visited = visited }
}

func WithLoader(l loader.Loader) Option {
	return func(s *settings) { s.loader = l }
}

// WithExtensions replaces the import specifier suffixes that are followed.
func WithExtensions(extensions ...string) Option {
	return func(s *settings) { s.extensions = extensions }
}

func WithParseOptions(opts ...jsmodule.ParseOption) Option {
	return func(s *settings) { s.parseOpts = opts }
}

func WithLogger(logger logging.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// Crawler holds default options; every call may override them.
type Crawler struct {
	defaults settings
}

func New(opts ...Option) *Crawler {
	c := &Crawler{}
	for _, opt := range opts {
		opt(&c.defaults)
	}
	return c
}

func (c *Crawler) resolve(opts []Option) settings {
	s := c.defaults
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logging.NewDiscardLogger()
	}
	if s.loader == nil {
		s.loader = loader.NewHTTP(loader.WithHTTPLogger(s.logger))
	}
	if len(s.extensions) == 0 {
		s.extensions = jsmodule.DefaultScriptExtensions
	}
	return s
}

// FromPage loads entryURL as an HTML page, visits its inline scripts and
// then walks every script referenced by src or imported inline.
//
// Failing to load or parse the page, or parsing an inline script, is
// returned as an error. Failures of individual scripts are logged and the
// script is treated as a leaf.
func (c *Crawler) FromPage(ctx context.Context, entryURL string, visit Visitor, opts ...Option) (*Sources, error) {
	s := c.resolve(opts)
	page, err := NormalizeURL("", entryURL)
	if err != nil {
		return nil, err
	}

	text, err := s.loader.Load(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", page, err)
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", page, err)
	}

	var queue []string
	for _, script := range scriptTags(doc) {
		if src, ok := attr(script, "src"); ok && strings.TrimSpace(src) != "" {
			id, err := NormalizeURL(page, src)
			if err != nil {
				s.logger.WithField("page", page).WithError(err).Warn("Skipping unresolvable script src")
				continue
			}
			queue = append(queue, id)
			continue
		}
		if typ, _ := attr(script, "type"); !isJavaScriptType(typ) {
			continue
		}

		inline := textContent(script)
		m, err := jsmodule.Parse(ctx, []byte(inline), s.parseOpts...)
		if err != nil {
			return nil, fmt.Errorf("parse inline script on %s: %w", page, err)
		}
		queue = append(queue, s.resolveImports(m, page)...)
		visit(m, inline, page)
		m.Close()
	}

	return s.walk(ctx, queue, "", visit)
}

// FromScript walks the module graph rooted at entryURL. A root that cannot
// be loaded or parsed is returned as an error; a root already present in
// the visited set is not.
func (c *Crawler) FromScript(ctx context.Context, entryURL string, visit Visitor, opts ...Option) (*Sources, error) {
	s := c.resolve(opts)
	root, err := NormalizeURL("", entryURL)
	if err != nil {
		return nil, err
	}
	return s.walk(ctx, []string{root}, root, visit)
}

// walk runs the breadth-first traversal. Failures of fatalRoot abort it.
func (s settings) walk(ctx context.Context, queue []string, fatalRoot string, visit Visitor) (*Sources, error) {
	visited := s.visited.Clone()

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return visited, err
		}
		current := queue[0]
		queue = queue[1:]
		if visited.Has(current) {
			crawlSourcesTotal.WithLabelValues(statusSkipped).Inc()
			continue
		}

		imports, err := s.visitOne(ctx, current, visit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return visited, ctxErr
			}
			if current == fatalRoot {
				return visited, err
			}
			crawlSourcesTotal.WithLabelValues(statusFailed).Inc()
			s.logger.WithField("source", current).WithError(err).Warn("Script traversal failed")
			visited.Add(current)
			continue
		}

		crawlSourcesTotal.WithLabelValues(statusVisited).Inc()
		for _, id := range imports {
			if !visited.Has(id) {
				queue = append(queue, id)
			}
		}
		visited.Add(current)
	}

	return visited, nil
}

func (s settings) visitOne(ctx context.Context, source string, visit Visitor) ([]string, error) {
	text, err := s.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	m, err := jsmodule.Parse(ctx, []byte(text), s.parseOpts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	defer m.Close()

	imports := s.resolveImports(m, source)
	visit(m, text, source)
	return imports, nil
}

func (s settings) resolveImports(m *jsmodule.Module, base string) []string {
	specifiers := m.Imports(s.extensions...)
	out := make([]string, 0, len(specifiers))
	for _, spec := range specifiers {
		id, err := NormalizeURL(base, spec)
		if err != nil {
			s.logger.WithFields(logging.Fields{
				"source":    base,
				"specifier": spec,
			}).WithError(err).Debug("Skipping unresolvable import")
			continue
		}
		out = append(out, id)
	}
	return out
}
