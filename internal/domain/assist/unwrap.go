package assist

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// UnwrapCode returns the body of the reply's only fenced code block; prose
// before or after that block is dropped. Replies with no fenced block, or with
// several, are returned unchanged. Used before splicing a fix into a document;
// the Outcome text is never rewritten.
func UnwrapCode(reply string) string {
	src := []byte(reply)
	doc := markdown.Parser().Parse(gtext.NewReader(src))

	var found *ast.FencedCodeBlock
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			continue
		}
		if found != nil {
			return reply
		}
		found = fb
	}
	if found == nil {
		return reply
	}

	var b strings.Builder
	lines := found.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}
