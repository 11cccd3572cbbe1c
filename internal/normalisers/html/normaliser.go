package html

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/normalisers/decode"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{"html", "htm", "xhtml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise converts an HTML document to plain text led by its title.
func (n *Normaliser) Normalise(_ context.Context, content []byte, _ string) (string, error) {
	title, text := extract(decode.Text(content))
	if title != "" && !strings.HasPrefix(text, title) {
		text = title + "\n\n" + text
	}
	return strings.TrimSpace(text), nil
}

// StripTags returns the readable text of an HTML fragment, one block
// element per line.
func StripTags(content string) string {
	_, text := extract(content)
	return text
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// blocks start and end on their own line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Aside: true, atom.Main: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Figure: true, atom.Figcaption: true, atom.Form: true, atom.Address: true,
}

// extract walks the token stream once, returning the first <title> and the
// body text.
func extract(content string) (title, text string) {
	var (
		z       = html.NewTokenizer(strings.NewReader(content))
		w       lineWriter
		t       strings.Builder
		skip    int
		inTitle bool
		seen    bool
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()

		switch tt {
		case html.TextToken:
			if inTitle {
				if !seen {
					t.WriteString(tok.Data)
				}
				continue
			}
			if skip == 0 {
				w.text(tok.Data)
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			switch {
			case tok.DataAtom == atom.Title:
				inTitle = tt == html.StartTagToken
			case tok.DataAtom == atom.Body:
				skip = 0
			case tok.DataAtom == atom.Br || tok.DataAtom == atom.Hr:
				w.newline()
			case skipped[tok.DataAtom]:
				if tt == html.StartTagToken {
					skip++
				}
			case blocks[tok.DataAtom]:
				w.newline()
			case tok.DataAtom == atom.Td || tok.DataAtom == atom.Th:
				w.space()
			}

		case html.EndTagToken:
			switch {
			case tok.DataAtom == atom.Title:
				if inTitle && strings.TrimSpace(t.String()) != "" {
					seen = true
				}
				inTitle = false
			case skipped[tok.DataAtom]:
				if skip > 0 {
					skip--
				}
			case blocks[tok.DataAtom]:
				w.newline()
			case tok.DataAtom == atom.Td || tok.DataAtom == atom.Th:
				w.space()
			}
		}
	}

	return strings.Join(strings.Fields(t.String()), " "), w.String()
}

// lineWriter collapses whitespace the way a browser renders inline text
// and never emits an empty line.
type lineWriter struct {
	b         strings.Builder
	lineEmpty bool
	pending   bool
}

func (w *lineWriter) text(s string) {
	if s == "" {
		return
	}
	if isSpace(s[0]) {
		w.pending = true
	}
	for _, word := range strings.Fields(s) {
		if w.pending && !w.atLineStart() {
			w.b.WriteByte(' ')
		}
		w.b.WriteString(word)
		w.lineEmpty = false
		w.pending = true
	}
	w.pending = isSpace(s[len(s)-1])
}

func (w *lineWriter) space() {
	w.pending = true
}

func (w *lineWriter) newline() {
	if !w.atLineStart() {
		w.b.WriteByte('\n')
		w.lineEmpty = true
	}
	w.pending = false
}

func (w *lineWriter) atLineStart() bool {
	return w.b.Len() == 0 || w.lineEmpty
}

func (w *lineWriter) String() string {
	return strings.TrimRight(w.b.String(), "\n")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
