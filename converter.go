package domsift

// Converter renders extracted content HTML as Markdown. It expects the
// cleaned markup an Extractor produces, not a raw page.
type Converter interface {
	Convert(html string) (string, error)
}
