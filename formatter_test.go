package domsift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/domsift"
)

func TestFormatPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages []*domsift.Page
		want  string
	}{
		{
			name: "titled page",
			pages: []*domsift.Page{
				{Title: "Grouped splits", Content: "Blocks from one page stay together."},
			},
			want: "## Grouped splits\nBlocks from one page stay together.",
		},
		{
			name: "untitled page falls back to its URL",
			pages: []*domsift.Page{
				{URL: "https://example.com/articles/splits", Content: "Blocks from one page stay together."},
			},
			want: "## https://example.com/articles/splits\nBlocks from one page stay together.",
		},
		{
			name: "pages are separated by a blank line",
			pages: []*domsift.Page{
				{Title: "First", Content: "One."},
				{Title: "Second", Content: "Two."},
			},
			want: "## First\nOne.\n\n## Second\nTwo.",
		},
		{
			name:  "nil yields nothing",
			pages: nil,
			want:  "",
		},
		{
			name:  "empty slice yields nothing",
			pages: []*domsift.Page{},
			want:  "",
		},
		{
			name: "markdown content passes through untouched",
			pages: []*domsift.Page{
				{Title: "Training", Content: "# Setup\n\n```bash\ndomsift train --input shards/\n```"},
			},
			want: "## Training\n# Setup\n\n```bash\ndomsift train --input shards/\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domsift.FormatPages(tt.pages))
		})
	}
}
