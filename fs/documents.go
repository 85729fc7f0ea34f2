package fs

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/fwojciec/domsift"
)

// csvDocument mirrors one row of an input document table.
type csvDocument struct {
	URL     string `csv:"url"`
	HTML    string `csv:"html"`
	Content string `csv:"content"`
}

// ReadDocumentsCSV loads documents from a CSV file with url and html
// columns and an optional content column holding gold-standard text.
func ReadDocumentsCSV(path string) ([]*domsift.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []*csvDocument
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "document table %s: %v", path, err)
	}

	docs := make([]*domsift.Document, 0, len(rows))
	for i, row := range rows {
		doc := &domsift.Document{URL: row.URL, HTML: row.HTML, Content: row.Content}
		if err := doc.Validate(); err != nil {
			// Line numbers count the header.
			return nil, domsift.Errorf(domsift.EINVALID, "document table %s line %d: %s", path, i+2, domsift.ErrorMessage(err))
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadDocumentsGlob loads one unlabeled document per file matching the
// glob pattern, with file:// URLs as group keys. Matches arrive in
// Glob's sorted order, so shard row order is stable across runs.
func ReadDocumentsGlob(pattern string) ([]*domsift.Document, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, domsift.Errorf(domsift.EINVALID, "glob %q: %v", pattern, err)
	}
	if len(matches) == 0 {
		return nil, domsift.Errorf(domsift.ENOTFOUND, "glob %q matched no files", pattern)
	}

	docs := make([]*domsift.Document, 0, len(matches))
	for _, match := range matches {
		html, err := os.ReadFile(match)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(match)
		if err != nil {
			return nil, err
		}
		docs = append(docs, &domsift.Document{
			URL:  "file://" + filepath.ToSlash(abs),
			HTML: string(html),
		})
	}
	return docs, nil
}
