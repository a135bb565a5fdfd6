// Package textnorm turns vendor message bodies into clean plain text and
// resolves message timestamps from inconsistent source fields.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WrapWidth is the column at which converted markup is wrapped.
const WrapWidth = 78

var (
	spaceRe       = regexp.MustCompile(`[ \t\r\n\f\x{00a0}]+`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	quotePrefixRe = regexp.MustCompile(`^(?:> ?)+`)
)

// NormalizeBody returns the plain-text body of a message. Markup wins over
// plain text when both are present.
func NormalizeBody(htmlBody, textBody *string) string {
	if htmlBody != nil && strings.TrimSpace(*htmlBody) != "" {
		return Clean(HTMLToText(*htmlBody))
	}
	if textBody != nil {
		return strings.TrimSpace(*textBody)
	}
	return ""
}

// HTMLToText renders markup as wrapped plain text. Links keep their visible
// text, images are dropped and blockquotes are prefixed with "> ".
func HTMLToText(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse only fails on reader errors.
		return stripTags(markup)
	}
	var r renderer
	r.walk(doc)
	return wrap(r.String(), WrapWidth)
}

// stripTags removes anything tag-shaped, decodes entities and folds whitespace.
func stripTags(markup string) string {
	text := html.UnescapeString(tagRe.ReplaceAllString(markup, " "))
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Clean drops lines that are empty once quote markers and whitespace
// (including non-breaking spaces) are removed. Quoted empty lines vanish;
// other blank runs become a single empty line between paragraphs.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(strings.ReplaceAll(line, ">", "")) == "" {
			if strings.ContainsRune(line, '>') {
				continue
			}
			if len(kept) > 0 && kept[len(kept)-1] != "" {
				kept = append(kept, "")
			}
			continue
		}
		kept = append(kept, strings.TrimRightFunc(line, unicode.IsSpace))
	}
	out := strings.Join(kept, "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

type renderer struct {
	b   strings.Builder
	pre int
}

func (r *renderer) String() string { return r.b.String() }

func (r *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
		return
	case html.ElementNode:
		r.element(n)
		return
	}
	r.children(n)
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func (r *renderer) element(n *html.Node) {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Img, atom.Noscript:
		return
	case atom.Br:
		r.b.WriteString("\n")
	case atom.Hr:
		r.block("\n\n")
		r.b.WriteString(strings.Repeat("-", 10))
		r.block("\n\n")
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Table, atom.Ul, atom.Ol:
		r.block("\n\n")
		r.children(n)
		r.block("\n\n")
	case atom.Div, atom.Tr, atom.Section, atom.Article, atom.Header, atom.Footer:
		r.block("\n")
		r.children(n)
		r.block("\n")
	case atom.Li:
		r.block("\n")
		r.b.WriteString("  * ")
		r.children(n)
		r.block("\n")
	case atom.Td, atom.Th:
		r.children(n)
		r.b.WriteString(" ")
	case atom.Pre:
		r.block("\n\n")
		r.pre++
		r.children(n)
		r.pre--
		r.block("\n\n")
	case atom.Blockquote:
		var inner renderer
		inner.pre = r.pre
		inner.children(n)
		r.block("\n\n")
		for i, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			if i > 0 {
				r.b.WriteString("\n")
			}
			r.b.WriteString("> ")
			r.b.WriteString(line)
		}
		r.block("\n\n")
	default:
		// a, span, strong, em and unknown inline elements keep only their text.
		r.children(n)
	}
}

func (r *renderer) text(data string) {
	if r.pre > 0 {
		r.b.WriteString(data)
		return
	}
	data = spaceRe.ReplaceAllString(data, " ")
	if data == " " || data == "" {
		if r.atLineStart() {
			return
		}
	}
	if r.atLineStart() {
		data = strings.TrimLeft(data, " ")
	}
	r.b.WriteString(data)
}

func (r *renderer) atLineStart() bool {
	s := r.b.String()
	return s == "" || strings.HasSuffix(s, "\n") || strings.HasSuffix(s, "> ")
}

// block makes sure the output ends with at least sep worth of newlines.
func (r *renderer) block(sep string) {
	s := r.b.String()
	if s == "" {
		return
	}
	trailing := len(s) - len(strings.TrimRight(s, "\n"))
	for i := trailing; i < len(sep); i++ {
		r.b.WriteString("\n")
	}
}

func wrap(text string, width int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if len(line) <= width {
		return []string{line}
	}
	prefix := quotePrefixRe.FindString(line)
	words := strings.Fields(line[len(prefix):])
	if len(words) == 0 {
		return []string{line}
	}
	var (
		lines   []string
		current = prefix + words[0]
	)
	for _, w := range words[1:] {
		if len(current)+1+len(w) > width {
			lines = append(lines, current)
			current = prefix + w
			continue
		}
		current += " " + w
	}
	return append(lines, current)
}
