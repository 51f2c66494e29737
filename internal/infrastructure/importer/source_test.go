package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestFileSource_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte("Alice,Math\n"), 0o600))

	rc, err := NewFileSource(dir).Open(context.Background(), " roster.csv ")
	require.NoError(t, err)
	assert.Equal(t, "Alice,Math\n", readAll(t, rc))

	rc, err = NewFileSource("/does/not/matter").Open(context.Background(), path)
	require.NoError(t, err, "absolute paths ignore the base dir")
	assert.Equal(t, "Alice,Math\n", readAll(t, rc))
}

func TestFileSource_Open_Errors(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource(dir)

	_, err := src.Open(context.Background(), "missing.csv")
	assert.ErrorIs(t, err, shared.ErrSourceUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = src.Open(context.Background(), "   ")
	assert.ErrorIs(t, err, shared.ErrSourceUnreadable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Open(ctx, "missing.csv")
	assert.ErrorIs(t, err, shared.ErrSourceUnreadable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderSource_Open(t *testing.T) {
	src := ReaderSource{Content: map[string]string{"a": "Alice,Math\n"}}

	rc, err := src.Open(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Alice,Math\n", readAll(t, rc))

	_, err = src.Open(context.Background(), "b")
	assert.ErrorIs(t, err, shared.ErrSourceUnreadable)
}

var _ Source = (*FileSource)(nil)
var _ Source = ReaderSource{}
