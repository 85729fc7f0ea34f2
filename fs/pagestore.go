// Package fs provides file-based storage for feature shards, trained
// models and extracted pages.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/domsift"
)

// Ensure FileStore implements domsift.PageStore at compile time.
var _ domsift.PageStore = (*FileStore)(nil)

// FileStore implements domsift.PageStore with atomic update semantics.
// Pages accumulate in a staging directory next to the final one; Commit
// swaps the staging directory into place, so readers never observe a
// half-written extraction run.
type FileStore struct {
	staging string
	final   string
}

// NewFileStore creates a FileStore writing under baseDir. Pages stage
// in baseDir/name.tmp until Commit renames the directory to
// baseDir/name.
func NewFileStore(baseDir, name string) *FileStore {
	final := filepath.Join(baseDir, name)
	return &FileStore{staging: final + ".tmp", final: final}
}

// Save writes one page into the staging directory, creating parent
// directories as needed.
func (s *FileStore) Save(ctx context.Context, page *domsift.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	dst := filepath.Join(s.staging, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(FormatPage(page)), 0644)
}

// Commit replaces the final directory with the staged one.
func (s *FileStore) Commit() error {
	if err := os.RemoveAll(s.final); err != nil {
		return err
	}
	return os.Rename(s.staging, s.final)
}

// Abort discards everything staged so far.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.staging)
}

// URLToPath converts a page URL to a relative markdown file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
// Returns EINVALID for URLs whose path would escape the output
// directory.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", domsift.Errorf(domsift.EINVALID, "parse url %q: %v", rawURL, err)
	}

	p := strings.TrimPrefix(u.Path, "/")
	if p == "" {
		return "index.md", nil
	}
	if strings.HasSuffix(p, "/") {
		p += "index.md"
	} else {
		p += ".md"
	}

	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return "", domsift.Errorf(domsift.EINVALID, "path traversal in url %q", rawURL)
	}
	return p, nil
}

// FormatPage renders an extracted page as markdown with YAML
// frontmatter recording where it came from.
func FormatPage(page *domsift.Page) string {
	return fmt.Sprintf("---\nsource: %s\ntitle: %s\nextracted: %s\n---\n\n%s",
		page.URL, page.Title, time.Now().Format("2006-01-02"), page.Content)
}
