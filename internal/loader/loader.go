// Package loader extracts text from user documents and splits it into
// overlapping chunks for the researcher stage.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jorge-barreto/augmentor/internal/failure"
)

// Default chunking, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".py":   true,
	".go":   true,
	".js":   true,
	".ts":   true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".csv":  true,
	".html": true,
	".rst":  true,
}

// Loader reads documents from disk.
type Loader struct {
	ChunkSize    int
	ChunkOverlap int
}

// New returns a loader; non-positive sizes fall back to the defaults.
func New(chunkSize, overlap int) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = 0
		}
	}
	return &Loader{ChunkSize: chunkSize, ChunkOverlap: overlap}
}

// Supported reports whether path has an extension the loader can read.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || textExtensions[ext]
}

// Extract returns the full text of the document at path.
func (l *Loader) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return extractPDF(path)
	case textExtensions[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", failure.External("loader", err)
		}
		if !utf8.Valid(data) {
			return "", failure.External("loader", fmt.Errorf("%s is not valid UTF-8 text", path))
		}
		return string(data), nil
	default:
		return "", &failure.UnsupportedFormatError{Path: path, Ext: ext}
	}
}

// Load extracts the document and splits it into chunks.
func (l *Loader) Load(ctx context.Context, path string) ([]string, error) {
	text, err := l.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return SplitText(text, l.ChunkSize, l.ChunkOverlap), nil
}
