// Package docsource extracts plain text from submitted document files.
// Format-specific parsing beyond plain text and HTML lives behind the
// Extractor interface so heavier parsers can be registered later.
package docsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	apperrors "reqgraph/pkg/errors"
)

// Extractor turns a document file into plain text
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Registry dispatches to an Extractor by file extension
type Registry struct {
	byExt    map[string]Extractor
	fallback Extractor
}

// NewRegistry returns a registry with the default readers wired:
// HTML via goquery, everything else read as plain text.
func NewRegistry() *Registry {
	plain := &PlainReader{}
	html := &HTMLReader{}
	return &Registry{
		byExt: map[string]Extractor{
			".txt":  plain,
			".md":   plain,
			".html": html,
			".htm":  html,
		},
		fallback: plain,
	}
}

// Register adds or replaces the extractor for an extension
func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// Extract dispatches on the file's extension
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		e = r.fallback
	}
	return e.Extract(ctx, path)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewSourceNotFound(path, err)
		}
		return "", err
	}
	return string(data), nil
}
