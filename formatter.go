package domsift

import "strings"

// FormatPages renders extracted pages as one Markdown document, each
// page under a "##" header carrying its title, or its URL when the
// title is empty.
func FormatPages(pages []*Page) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := page.Title
		if title == "" {
			title = page.URL
		}
		b.WriteString("## ")
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(page.Content)
	}
	return b.String()
}
