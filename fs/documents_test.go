package fs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/fs"
)

func TestReadDocumentsCSV(t *testing.T) {
	t.Parallel()

	t.Run("reads labeled and unlabeled rows", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.csv")
		data := `url,html,content
https://example.com/a,"<html><body><p>Hello, world</p></body></html>","Hello, world"
https://example.com/b,"<html><body><p>Nav</p></body></html>",
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		docs, err := fs.ReadDocumentsCSV(path)
		require.NoError(t, err)
		require.Len(t, docs, 2)

		assert.Equal(t, "https://example.com/a", docs[0].URL)
		assert.Contains(t, docs[0].HTML, "<p>Hello, world</p>")
		assert.Equal(t, "Hello, world", docs[0].Content)
		assert.Empty(t, docs[1].Content, "content column is optional per row")
	})

	t.Run("reports the line of an invalid row", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.csv")
		data := `url,html,content
https://example.com/a,"<html></html>",
https://example.com/b,,
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		_, err := fs.ReadDocumentsCSV(path)
		require.Error(t, err)
		assert.Equal(t, domsift.EINVALID, domsift.ErrorCode(err))
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("returns EPARSE for a malformed file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docs.csv")
		require.NoError(t, os.WriteFile(path, []byte("url,html\n\"unterminated\n"), 0644))

		_, err := fs.ReadDocumentsCSV(path)
		require.Error(t, err)
		assert.Equal(t, domsift.EPARSE, domsift.ErrorCode(err))
	})
}

func TestReadDocumentsGlob(t *testing.T) {
	t.Parallel()

	t.Run("loads matching files in sorted order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("<html>b</html>"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("<html>a</html>"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))

		docs, err := fs.ReadDocumentsGlob(filepath.Join(dir, "*.html"))
		require.NoError(t, err)
		require.Len(t, docs, 2)

		assert.True(t, strings.HasSuffix(docs[0].URL, "a.html"))
		assert.True(t, strings.HasPrefix(docs[0].URL, "file://"))
		assert.Equal(t, "<html>a</html>", docs[0].HTML)
		assert.True(t, strings.HasSuffix(docs[1].URL, "b.html"))
		assert.Empty(t, docs[0].Content)
	})

	t.Run("returns ENOTFOUND when nothing matches", func(t *testing.T) {
		t.Parallel()

		_, err := fs.ReadDocumentsGlob(filepath.Join(t.TempDir(), "*.html"))
		require.Error(t, err)
		assert.Equal(t, domsift.ENOTFOUND, domsift.ErrorCode(err))
	})
}
