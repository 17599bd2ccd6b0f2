package preview

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"retainformat/config"
)

const (
	ansiTag   = "\x1b[1;36m"
	ansiReset = "\x1b[0m"
)

// TagClass is CSS class of tag tokens in HTML preview.
const TagClass = "semantic-tag"

// WriteANSI writes tokens highlighting tags when color is requested.
func WriteANSI(w io.Writer, tokens []Token, color bool) error {
	for _, t := range tokens {
		var err error
		if color && t.Kind == Tag {
			_, err = fmt.Fprint(w, ansiTag, t.Text, ansiReset)
		} else {
			_, err = io.WriteString(w, t.Text)
		}
		if err != nil {
			return fmt.Errorf("unable to write preview: %w", err)
		}
	}
	return nil
}

// Console prints tagged text to f, tags are colored if f is a terminal
// supporting colors.
func Console(f *os.File, tagged string) error {
	color := config.EnableColorOutput(f)
	if err := WriteANSI(f, Tokenize(tagged), color); err != nil {
		return err
	}
	if !strings.HasSuffix(tagged, "\n") {
		_, _ = io.WriteString(f, "\n")
	}
	return nil
}

// HTML renders tokens escaping all text, tag tokens are wrapped into
// <span class="semantic-tag">.
func HTML(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.Kind == Tag {
			sb.WriteString(`<span class="` + TagClass + `">`)
			sb.WriteString(html.EscapeString(t.Text))
			sb.WriteString(`</span>`)
			continue
		}
		sb.WriteString(html.EscapeString(t.Text))
	}
	return sb.String()
}

// CheckXML verifies that tagged text with its literal text escaped is a
// well formed XML fragment. Labels are never escaped so label which is
// not a valid XML name makes check fail.
func CheckXML(tagged string) error {
	var buf bytes.Buffer
	buf.WriteString("<fragment>")
	for _, t := range Tokenize(tagged) {
		if t.Kind == Tag {
			buf.WriteString(t.Text)
			continue
		}
		buf.WriteString(html.EscapeString(t.Text))
	}
	buf.WriteString("</fragment>")

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{ValidateInput: true}
	if _, err := doc.ReadFrom(&buf); err != nil {
		return fmt.Errorf("output is not well formed XML: %w", err)
	}
	return nil
}
