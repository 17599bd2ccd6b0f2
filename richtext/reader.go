package richtext

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"retainformat/common"
	"retainformat/css"
)

//go:embed ua.css
var agentStylesheet []byte

// ErrBinaryInput is returned for inputs recognized as binary files.
var ErrBinaryInput = errors.New("input is not a text document")

// Options controls reading.
type Options struct {
	Format common.InputFmt
	// CodePage overrides charset declared or detected for input.
	CodePage encoding.Encoding
	// Sanitize pasted HTML before reading, <style> blocks are still honored.
	Sanitize bool
	// Stylesheet is applied after document's own <style> blocks.
	Stylesheet []byte
	// Root is the style of the surface content is placed into.
	Root Style
	Log  *zap.Logger
}

// ReadString is Read for in-memory text.
func ReadString(s string, opts Options) (*Document, error) {
	return Read(strings.NewReader(s), opts)
}

// Read reads rich text and resolves style of every element.
func Read(r io.Reader, opts Options) (*Document, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("richtext")

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return nil, fmt.Errorf("%w: looks like %s", ErrBinaryInput, kind.MIME.Value)
	}

	if data, err = decode(data, opts); err != nil {
		return nil, err
	}
	if opts.Format == common.InputFmtMarkdown {
		if data, err = markdownToHTML(data); err != nil {
			return nil, err
		}
	}

	tree, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}

	parser := css.NewParser(log)
	d := &Document{rootBase: opts.Root}
	d.addRules(parser.Parse(agentStylesheet, "user agent"), originAgent)
	for i, block := range styleBlocks(tree) {
		d.addRules(parser.Parse([]byte(block), fmt.Sprintf("style block %d", i+1)), originAuthor)
	}
	if len(opts.Stylesheet) > 0 {
		d.addRules(parser.Parse(opts.Stylesheet, "stylesheet"), originAuthor)
	}

	if opts.Sanitize {
		clean := sanitize(data)
		log.Debug("Sanitized input", zap.Int("before", len(data)), zap.Int("after", len(clean)))
		if tree, err = html.Parse(bytes.NewReader(clean)); err != nil {
			return nil, fmt.Errorf("unable to parse sanitized html: %w", err)
		}
	}

	body := findBody(tree)
	if body == nil {
		// parser always synthesizes body, this should never happen
		return nil, errors.New("document has no body")
	}
	d.build(body, nil, parser)
	d.Restyle(opts.Root)

	log.Debug("Document read", zap.Int("elements", len(d.elements)), zap.Int("runs", len(d.runs)), zap.Int("rules", len(d.rules)))
	return d, nil
}

func decode(data []byte, opts Options) ([]byte, error) {
	enc := opts.CodePage
	if enc == nil {
		contentType := "text/html"
		if opts.Format == common.InputFmtMarkdown {
			contentType = "text/plain"
		}
		enc, _, _ = charset.DetermineEncoding(data, contentType)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode input: %w", err)
	}
	return out, nil
}

func (d *Document) addRules(sheet *css.Stylesheet, o origin) {
	for _, r := range sheet.Rules {
		d.rules = append(d.rules, sourcedRule{rule: r, origin: o})
	}
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func styleBlocks(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			out = append(out, sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// invisible elements, their content never reaches the surface
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Title:    true,
}

// build walks html tree in document order creating elements and runs.
func (d *Document) build(n *html.Node, parent *Element, parser *css.Parser) {
	e := &Element{name: strings.ToLower(n.Data), parent: parent}
	var inline map[string]css.Value
	hints := make(map[string]string)
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "id":
			e.id = a.Val
		case "class":
			e.classes = strings.Fields(a.Val)
		case "style":
			inline = parser.ParseInline([]byte(a.Val))
		case "align":
			if e.name != "img" && e.name != "table" {
				hints["text-align"] = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "color":
			if e.name == "font" {
				hints["color"] = legacyColor(a.Val)
			}
		}
	}
	e.specified = d.cascade(e, hints, inline)
	d.elements = append(d.elements, e)
	if parent == nil {
		d.root = e
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if len(c.Data) > 0 {
				d.runs = append(d.runs, Run{Kind: RunText, Text: c.Data, Node: e})
			}
		case html.ElementNode:
			if skipped[c.DataAtom] {
				continue
			}
			if c.DataAtom == atom.Br {
				d.runs = append(d.runs, Run{Kind: RunBreak})
			}
			d.build(c, e, parser)
		}
	}
}

// legacyColor accepts hex colors without leading hash the way browsers do
// for <font color>.
func legacyColor(v string) string {
	v = strings.TrimSpace(v)
	if _, ok := NormalizeColor(v); ok {
		return v
	}
	if _, ok := NormalizeColor("#" + v); ok {
		return "#" + v
	}
	return v
}
