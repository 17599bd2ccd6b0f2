package css

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets and inline declarations.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. The optional source parameter
// identifies what is being parsed for debug logging. At-rules are skipped,
// only plain rulesets are kept.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.stop(parser) {
				return sheet
			}

		case css.BeginAtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))
			p.skipAtRuleBlock(parser)

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			selectors := splitSelectors(data, parser.Values())
			props := p.parseDeclarations(parser)
			for _, raw := range selectors {
				sel, ok := p.parseSelector(raw, sheet)
				if !ok {
					continue
				}
				sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Properties: props})
			}
		}
	}
}

// ParseInline parses content of a style attribute.
func (p *Parser) ParseInline(data []byte) map[string]Value {
	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), true)
	return p.parseDeclarations(parser)
}

// stop reports whether parsing is over. Error grammar without error is
// returned for malformed constructs, parser recovers from those.
func (p *Parser) stop(parser *css.Parser) bool {
	err := parser.Err()
	if err == nil {
		return false
	}
	if err != io.EOF {
		p.log.Debug("CSS parse error", zap.Error(err))
	}
	return true
}

// parseDeclarations collects declarations until end of ruleset (or input).
// Later declarations override earlier ones unless earlier is important.
func (p *Parser) parseDeclarations(parser *css.Parser) map[string]Value {
	props := make(map[string]Value)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.EndRulesetGrammar:
			return props
		case css.ErrorGrammar:
			if p.stop(parser) {
				return props
			}
		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			name := strings.ToLower(string(data))
			val := parsePropertyValue(values)
			if old, ok := props[name]; ok && old.Important && !val.Important {
				continue
			}
			props[name] = val
		}
	}
}

// splitSelectors builds selector text from token data and splits grouped
// selectors.
func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	var val Value

	// strip trailing "!important"
	n := len(tokens)
	for n > 0 && tokens[n-1].TokenType == css.WhitespaceToken {
		n--
	}
	if n >= 2 && tokens[n-1].TokenType == css.IdentToken && strings.EqualFold(string(tokens[n-1].Data), "important") {
		i := n - 2
		for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
			i--
		}
		if i >= 0 && tokens[i].TokenType == css.DelimToken && string(tokens[i].Data) == "!" {
			val.Important = true
			tokens = tokens[:i]
		}
	}

	var raw strings.Builder
	var significant []css.Token
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			if raw.Len() > 0 {
				raw.WriteByte(' ')
			}
			continue
		}
		raw.Write(t.Data)
		significant = append(significant, t)
	}
	val.Raw = strings.TrimSpace(raw.String())

	if len(significant) != 1 {
		// functions (rgb(), url()) and multi-value properties
		val.Keyword = val.Raw
		return val
	}

	t := significant[0]
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(string(t.Data))
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(string(t.Data))
	case css.StringToken:
		val.Keyword = unquote(string(t.Data))
	case css.HashToken:
		val.Keyword = strings.ToLower(string(t.Data))
	default:
		val.Keyword = val.Raw
	}
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	end := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			end = i + 1
			continue
		}
		break
	}
	if end == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:end], 64)
	return num, strings.ToLower(s[end:])
}

// parseSelector parses a selector with descendant and child combinators.
// Sibling combinators, attribute selectors and pseudo classes are not
// supported: such selectors are reported and dropped.
func (p *Parser) parseSelector(raw string, sheet *Stylesheet) (Selector, bool) {
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, "+~[:") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+raw)
		p.log.Debug("Skipping unsupported selector", zap.String("selector", raw))
		return Selector{Raw: raw}, false
	}

	parts := strings.Fields(strings.ReplaceAll(raw, ">", " > "))
	var (
		cur   *Selector
		child bool
	)
	for _, part := range parts {
		if part == ">" {
			if cur == nil || child {
				sheet.Warnings = append(sheet.Warnings, "malformed selector: "+raw)
				return Selector{Raw: raw}, false
			}
			child = true
			continue
		}
		next := parseCompound(part)
		if next.IsEmpty() {
			sheet.Warnings = append(sheet.Warnings, "malformed selector: "+raw)
			return Selector{Raw: raw}, false
		}
		next.Ancestor, next.Child = cur, child && cur != nil
		cur, child = &next, false
	}
	if cur == nil || child {
		sheet.Warnings = append(sheet.Warnings, "malformed selector: "+raw)
		return Selector{Raw: raw}, false
	}
	cur.Raw = raw
	return *cur, true
}

// parseCompound parses selector like "p", "*", ".note", "span.a.b#id".
func parseCompound(s string) Selector {
	sel := Selector{Raw: s}
	// split keeping leading marker of every piece
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		piece := s[start:end]
		switch piece[0] {
		case '.':
			if len(piece) > 1 {
				sel.Classes = append(sel.Classes, piece[1:])
			}
		case '#':
			if len(piece) > 1 {
				sel.IDName = piece[1:]
			}
		default:
			sel.Element = strings.ToLower(piece)
		}
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '.' || s[i] == '#' {
			flush(i)
			start = i
		}
	}
	flush(len(s))
	return sel
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.stop(parser) {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
