// Package output renders and writes the artifacts of an introspection run:
// the combined schema file, the split schema/operations layout and crawled
// source dumps.
package output

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/s21toolkit/s21introspector/internal/registry"
)

var ErrIncompatibleFlags = errors.New("incompatible flags")

var placeholderPattern = regexp.MustCompile(`\{([\w$-]+)\}`)

// Lookup resolves a placeholder name. *staticprops.Properties implements it.
type Lookup interface {
	Get(name string) (string, bool)
}

// ResolvePath replaces every {NAME} placeholder in template with its value,
// or with nothing when lookup has no such name, and makes the result absolute.
func ResolvePath(template string, lookup Lookup) (string, error) {
	resolved := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if lookup == nil {
			return ""
		}
		name := match[1 : len(match)-1]
		if v, ok := lookup.Get(name); ok {
			return v
		}
		return ""
	})
	return filepath.Abs(resolved)
}

// Placeholders lists the placeholder names used by template, in order.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Mode selects what the introspect command writes.
type Mode struct {
	TypesOnly bool
	Split     bool
}

func (m Mode) Validate() error {
	if m.TypesOnly && m.Split {
		return fmt.Errorf("%w: types-only is not allowed with split-operations", ErrIncompatibleFlags)
	}
	return nil
}

// AllowFragmentReuse reports whether each emitted operation carries every
// fragment it needs. Separate files must be self-contained; a single combined
// file must not define a fragment twice.
func (m Mode) AllowFragmentReuse() bool {
	return m.Split
}

// CombinedDocument joins the schema and the operations with blank lines.
func CombinedDocument(schemaSDL string, ops []registry.Operation) string {
	parts := []string{strings.TrimSpace(schemaSDL)}
	for _, op := range ops {
		parts = append(parts, op.String())
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// ModuleFilename maps a crawled source to a relative file path: the URL path
// for scripts, root-<md5 of text>.js for the page itself.
func ModuleFilename(source, text string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse source %q: %w", source, err)
	}
	p := u.Path
	if p == "" || p == "/" {
		sum := md5.Sum([]byte(text))
		return "root-" + hex.EncodeToString(sum[:]) + ".js", nil
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	return filepath.FromSlash(cleaned), nil
}

// Writer writes output files through an afero filesystem.
type Writer struct {
	Fs afero.Fs
}

func NewWriter(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{Fs: fs}
}

// WriteFile writes content to name, creating parent directories.
func (w *Writer) WriteFile(name, content string) error {
	if err := w.Fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", name, err)
	}
	if err := afero.WriteFile(w.Fs, name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// CheckParentDir fails when the directory that would hold name is missing.
func (w *Writer) CheckParentDir(name string) error {
	dir := filepath.Dir(name)
	info, err := w.Fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("directory %s does not exist", dir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// SplitLayout writes dir/schema.gql and one dir/operations/<name>.gql per
// operation. It returns the number of operation files written.
func (w *Writer) SplitLayout(dir, schemaSDL string, ops []registry.Operation) (int, error) {
	if err := w.WriteFile(filepath.Join(dir, "schema.gql"), strings.TrimSpace(schemaSDL)); err != nil {
		return 0, err
	}
	opsDir := filepath.Join(dir, "operations")
	for i, op := range ops {
		name := filepath.Join(opsDir, op.Name+".gql")
		if err := w.WriteFile(name, op.String()); err != nil {
			return i, err
		}
	}
	return len(ops), nil
}

// WriteModule stores a crawled source under dir.
func (w *Writer) WriteModule(dir, source, text string) (string, error) {
	rel, err := ModuleFilename(source, text)
	if err != nil {
		return "", err
	}
	name := filepath.Join(dir, rel)
	return name, w.WriteFile(name, text)
}
