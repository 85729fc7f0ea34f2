package goquery

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// skipTags are never walked: they carry no classifiable text.
var skipTags = map[string]bool{
	"audio": true, "br": true, "canvas": true, "embed": true,
	"head": true, "hr": true, "iframe": true, "img": true,
	"input": true, "link": true, "map": true, "math": true,
	"meta": true, "noscript": true, "object": true, "script": true,
	"style": true, "svg": true, "template": true, "title": true,
	"video": true, "wbr": true,
}

// blockTags segment a page: they root blocks and bound inline text
// ownership.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "caption": true, "dd": true, "div": true, "dt": true,
	"figcaption": true, "footer": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"li": true, "main": true, "nav": true, "p": true, "pre": true,
	"section": true, "summary": true, "td": true, "th": true,
}

// tagVocab is the tag vocabulary for one-hot and histogram features.
// Tags outside the vocabulary fall into a shared "other" slot. Order is
// fixed: it defines column order.
var tagVocab = []string{
	"a", "article", "aside", "blockquote", "body", "div", "em",
	"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6", "header",
	"li", "main", "nav", "ol", "p", "pre", "section", "span",
	"strong", "table", "td", "th", "tr", "ul",
}

var tagSlot = func() map[string]int {
	m := make(map[string]int, len(tagVocab))
	for i, t := range tagVocab {
		m[t] = i
	}
	return m
}()

// intrinsicColumns name the block root's own features, in order.
var intrinsicColumns = []string{
	"depth", "pos", "sibling_count", "text_len", "word_count",
	"avg_word_len", "link_word_count", "link_density", "digit_ratio",
	"attr_count", "has_id", "has_class", "has_style", "hidden",
}

// descColumns name the descendant window aggregates, in order.
var descColumns = []string{
	"desc_node_count", "desc_text_len", "desc_word_count",
	"desc_link_count", "desc_link_fraction", "desc_link_word_count",
	"desc_link_density", "desc_max_depth",
}

// sibColumns name the sibling window aggregates, in order.
var sibColumns = []string{
	"sib_node_count", "sib_text_len", "sib_word_count",
	"sib_link_count", "sib_link_fraction",
}

// ancestorScalars name the per-hop ancestor features that follow the
// hop's tag one-hot, in order.
var ancestorScalars = []string{
	"child_count", "sibling_pos", "attr_count", "has_id", "has_class",
}

// buildColumns returns the feature schema for the given ancestor depth.
// The order here must match the append order in features.
func buildColumns(depth int) []string {
	cols := make([]string, 0, len(intrinsicColumns)+len(tagVocab)+1+
		depth*(len(tagVocab)+1+len(ancestorScalars))+
		len(descColumns)+len(tagVocab)+1+len(sibColumns))

	cols = append(cols, intrinsicColumns...)
	cols = appendTagColumns(cols, "tag_is_")
	for k := 1; k <= depth; k++ {
		prefix := "anc" + strconv.Itoa(k) + "_"
		cols = appendTagColumns(cols, prefix+"tag_is_")
		for _, name := range ancestorScalars {
			cols = append(cols, prefix+name)
		}
	}
	cols = append(cols, descColumns...)
	cols = appendTagColumns(cols, "desc_tag_")
	cols = append(cols, sibColumns...)
	return cols
}

func appendTagColumns(cols []string, prefix string) []string {
	for _, t := range tagVocab {
		cols = append(cols, prefix+t)
	}
	return append(cols, prefix+"other")
}

// features computes the block's feature vector in schema order.
func (f *Featurizer) features(n *html.Node, path, text, linkText string) []float64 {
	v := make([]float64, 0, len(f.columns))

	words := len(strings.Fields(text))
	linkWords := len(strings.Fields(linkText))

	v = append(v,
		float64(strings.Count(path, "/")),
		float64(siblingPos(n)),
		float64(siblingCount(n)),
		float64(len([]rune(text))),
		float64(words),
		avgWordLen(text),
		float64(linkWords),
		ratio(linkWords, words),
		digitRatio(text),
		float64(len(n.Attr)),
		boolFeature(attr(n, "id") != ""),
		boolFeature(attr(n, "class") != ""),
		boolFeature(attr(n, "style") != ""),
		boolFeature(hidden(n)),
	)
	v = appendTagOneHot(v, n.Data)

	// Ancestor hops toward the root; chains shorter than depth pad the
	// remaining hops with zeros.
	anc := n.Parent
	for k := 1; k <= f.depth; k++ {
		if anc == nil || anc.Type != html.ElementNode {
			v = appendZeros(v, len(tagVocab)+1+len(ancestorScalars))
			continue
		}
		v = appendTagOneHot(v, anc.Data)
		v = append(v,
			float64(childElementCount(anc)),
			float64(siblingPos(anc)),
			float64(len(anc.Attr)),
			boolFeature(attr(anc, "id") != ""),
			boolFeature(attr(anc, "class") != ""),
		)
		anc = anc.Parent
	}

	desc := f.descendantStats(n)
	v = append(v,
		float64(desc.nodes),
		float64(desc.textLen),
		float64(desc.words),
		float64(desc.links),
		ratio(desc.links, desc.nodes),
		float64(desc.linkWords),
		ratio(desc.linkWords, desc.words),
		float64(desc.maxHop),
	)
	for _, count := range desc.tags {
		v = append(v, float64(count))
	}

	sib := f.siblingStats(n)
	v = append(v,
		float64(sib.nodes),
		float64(sib.textLen),
		float64(sib.words),
		float64(sib.links),
		ratio(sib.links, sib.nodes),
	)

	return v
}

type descStats struct {
	nodes     int
	textLen   int
	words     int
	links     int
	linkWords int
	maxHop    int
	tags      []int
}

// descendantStats aggregates the element subtree below n, bounded at
// height hops. A height of 0 leaves every aggregate zero.
func (f *Featurizer) descendantStats(n *html.Node) descStats {
	s := descStats{tags: make([]int, len(tagVocab)+1)}
	f.descend(n, 0, false, &s)
	return s
}

func (f *Featurizer) descend(n *html.Node, hop int, inAnchor bool, s *descStats) {
	if hop >= f.height {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skipTags[c.Data] {
			continue
		}
		s.nodes++
		s.tags[tagSlotOf(c.Data)]++
		if hop+1 > s.maxHop {
			s.maxHop = hop + 1
		}
		anchored := inAnchor || c.Data == "a"
		if c.Data == "a" {
			s.links++
		}
		for t := c.FirstChild; t != nil; t = t.NextSibling {
			if t.Type != html.TextNode {
				continue
			}
			collapsed := collapse(t.Data)
			if collapsed == "" {
				continue
			}
			s.textLen += len([]rune(collapsed))
			w := len(strings.Fields(collapsed))
			s.words += w
			if anchored {
				s.linkWords += w
			}
		}
		f.descend(c, hop+1, anchored, s)
	}
}

type sibStats struct {
	nodes   int
	textLen int
	words   int
	links   int
}

// siblingStats aggregates up to height element siblings on each side
// of n. Sibling text is the text each sibling owns, so shared parents
// are not double counted.
func (f *Featurizer) siblingStats(n *html.Node) sibStats {
	var s sibStats
	count := 0
	for sib := n.PrevSibling; sib != nil && count < f.height; sib = sib.PrevSibling {
		if sib.Type != html.ElementNode || skipTags[sib.Data] {
			continue
		}
		count++
		addSibling(sib, &s)
	}
	count = 0
	for sib := n.NextSibling; sib != nil && count < f.height; sib = sib.NextSibling {
		if sib.Type != html.ElementNode || skipTags[sib.Data] {
			continue
		}
		count++
		addSibling(sib, &s)
	}
	return s
}

func addSibling(sib *html.Node, s *sibStats) {
	s.nodes++
	text, linkText := ownText(sib)
	s.textLen += len([]rune(text))
	s.words += len(strings.Fields(text))
	if sib.Data == "a" || linkText != "" {
		s.links++
	}
}

func appendTagOneHot(v []float64, tag string) []float64 {
	slot := tagSlotOf(tag)
	for i := 0; i <= len(tagVocab); i++ {
		if i == slot {
			v = append(v, 1)
		} else {
			v = append(v, 0)
		}
	}
	return v
}

func tagSlotOf(tag string) int {
	if i, ok := tagSlot[tag]; ok {
		return i
	}
	return len(tagVocab)
}

func appendZeros(v []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		v = append(v, 0)
	}
	return v
}

// siblingPos returns n's 1-based position among its element siblings.
func siblingPos(n *html.Node) int {
	pos := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode {
			pos++
		}
	}
	return pos
}

// siblingCount returns the number of element siblings of n, excluding
// n itself.
func siblingCount(n *html.Node) int {
	if n.Parent == nil {
		return 0
	}
	count := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c != n {
			count++
		}
	}
	return count
}

func childElementCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hidden reports whether the element is hidden via the hidden attribute
// or an inline display/visibility declaration.
func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "hidden" {
			return true
		}
	}
	style := parseStyle(attr(n, "style"))
	return style["display"] == "none" || style["visibility"] == "hidden"
}

func avgWordLen(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	total := 0
	for _, w := range fields {
		total += len([]rune(w))
	}
	return float64(total) / float64(len(fields))
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
