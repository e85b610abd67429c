package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jorge-barreto/augmentor/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	assert.Equal(t, []string{"hello"}, SplitText("hello", 10, 2))
}

func TestSplitText_Empty(t *testing.T) {
	assert.Nil(t, SplitText("  \n\t", 10, 2))
}

func TestSplitText_Overlap(t *testing.T) {
	chunks := SplitText("abcdefghij", 4, 1)
	assert.Equal(t, []string{"abcd", "defg", "ghij"}, chunks)
}

func TestSplitText_RuneSafe(t *testing.T) {
	chunks := SplitText("héllo wörld", 5, 0)
	assert.Equal(t, []string{"héllo", " wörl", "d"}, chunks)
}

func TestSplitText_DefaultsCoverWholeText(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks := SplitText(text, DefaultChunkSize, DefaultChunkOverlap)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 700)
}

func TestNew_FallsBackToDefaults(t *testing.T) {
	l := New(0, -1)
	assert.Equal(t, DefaultChunkSize, l.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, l.ChunkOverlap)

	l = New(50, 80)
	assert.Equal(t, 50, l.ChunkSize)
	assert.Equal(t, 0, l.ChunkOverlap)
}

func TestLoad_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("abcdefghij"), 0644))

	chunks, err := New(4, 1).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd", "defg", "ghij"}, chunks)
}

func TestLoad_PythonSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hi')\n"), 0644))

	chunks, err := New(0, 0).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"print('hi')\n"}, chunks)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := New(0, 0).Load(context.Background(), path)
	var ufe *failure.UnsupportedFormatError
	require.True(t, errors.As(err, &ufe), "got %v", err)
	assert.Equal(t, ".docx", ufe.Ext)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New(0, 0).Load(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
	var ext *failure.ExternalCallError
	require.True(t, errors.As(err, &ext), "got %v", err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_CorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not really a pdf"), 0644))

	_, err := New(0, 0).Load(context.Background(), path)
	var ext *failure.ExternalCallError
	require.True(t, errors.As(err, &ext), "got %v", err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.PDF"))
	assert.True(t, Supported("b.md"))
	assert.False(t, Supported("c.exe"))
	assert.False(t, Supported("Makefile"))
}
