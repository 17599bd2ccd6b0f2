package richtext

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy keeps formatting relevant markup of pasted HTML and drops
// scripts, event handlers and the like.
var policy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("font", "u", "s", "strike", "center", "span", "div", "mark", "ins", "del", "br")
	p.AllowAttrs("color").OnElements("font")
	p.AllowAttrs("align").OnElements("p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th")
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("style").Globally()
	p.AllowStyles("color", "text-align", "font", "font-weight", "font-style", "text-decoration", "text-decoration-line").Globally()
	return p
})

func sanitize(data []byte) []byte {
	return policy().SanitizeBytes(data)
}
