// Package loader resolves source identities (URLs) to their text. Loaders
// compose: a preloaded Table answers first, the HTTP loader fetches the rest,
// and Cached memoizes whichever chain it wraps.
package loader

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that a loader has no text for the URL. Chain
	// treats it as a miss and moves on to the next loader.
	ErrNotFound = errors.New("source not found")
	// ErrStatus is wrapped by the HTTP loader for non-2xx responses.
	ErrStatus = errors.New("unexpected http status")
)

// Loader fetches the text of a source.
type Loader interface {
	Load(ctx context.Context, url string) (string, error)
}

// Func adapts a plain function to Loader.
type Func func(ctx context.Context, url string) (string, error)

func (f Func) Load(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

type chain []Loader

// Chain consults loaders in order. A loader answering ErrNotFound passes
// the request on; any other error stops the chain.
func Chain(loaders ...Loader) Loader {
	flat := make(chain, 0, len(loaders))
	for _, l := range loaders {
		if l == nil {
			continue
		}
		if nested, ok := l.(chain); ok {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, l)
	}
	return flat
}

func (c chain) Load(ctx context.Context, url string) (string, error) {
	for _, l := range c {
		text, err := l.Load(ctx, url)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", &notFoundError{url: url}
}

type notFoundError struct {
	url string
}

func (e *notFoundError) Error() string { return ErrNotFound.Error() + ": " + e.url }

func (e *notFoundError) Unwrap() error { return ErrNotFound }
