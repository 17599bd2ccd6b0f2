// Package preview splits tagged output into tag and text tokens and renders
// them for humans: on a terminal and as HTML.
package preview

// Kind of token.
type Kind int

const (
	Text Kind = iota
	Tag
)

func (k Kind) String() string {
	if k == Tag {
		return "tag"
	}
	return "text"
}

// Token is a piece of tagged output.
type Token struct {
	Kind Kind
	Text string
}

// Tokenize splits s into tokens in a single pass. Tag token is anything
// from '<' up to and including the next '>'. Unterminated '<' and
// everything after it is text.
func Tokenize(s string) []Token {
	var (
		out   []Token
		start int
	)
	flush := func(end int) {
		if end > start {
			out = append(out, Token{Kind: Text, Text: s[start:end]})
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		j := i + 1
		for j < len(s) && s[j] != '>' {
			j++
		}
		if j == len(s) {
			break
		}
		flush(i)
		out = append(out, Token{Kind: Tag, Text: s[i : j+1]})
		start = j + 1
		i = j
	}
	flush(len(s))
	return out
}
