// Package importer opens roster sources for the import pipeline.
package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

// Source resolves an identifier into a readable stream of "name,group" lines.
type Source interface {
	Open(ctx context.Context, identifier string) (io.ReadCloser, error)
}

// FileSource opens roster files from the local filesystem.
type FileSource struct {
	// BaseDir resolves relative identifiers. Empty means the working directory.
	BaseDir string
}

// NewFileSource creates a FileSource rooted at baseDir.
func NewFileSource(baseDir string) *FileSource {
	return &FileSource{BaseDir: baseDir}
}

// Open implements Source. Any failure is reported as ErrSourceUnreadable.
func (f *FileSource) Open(ctx context.Context, identifier string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.ErrSourceUnreadable.WithCause(err)
	}

	path := strings.TrimSpace(identifier)
	if path == "" {
		return nil, shared.ErrSourceUnreadable.WithMessage("empty source path")
	}
	if f.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.BaseDir, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, shared.ErrSourceUnreadable.
			WithMessage("failed to open %s", path).
			WithCause(err)
	}
	return file, nil
}

// ReaderSource serves fixed in-memory content keyed by identifier.
type ReaderSource struct {
	Content map[string]string
}

// Open implements Source.
func (r ReaderSource) Open(_ context.Context, identifier string) (io.ReadCloser, error) {
	content, ok := r.Content[identifier]
	if !ok {
		return nil, shared.ErrSourceUnreadable.WithMessage("unknown source %q", identifier)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}
