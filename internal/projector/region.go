package projector

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Region identifies one replaceable span of the template document by its
// enclosing element. The element's tags are never rewritten, only the bytes
// between them.
type Region struct {
	Name  string
	Tag   string
	Class string // empty matches any element with Tag
}

var (
	TitleRegion      = Region{Name: "title", Tag: "h1", Class: "title"}
	SubtitleRegion   = Region{Name: "subtitle", Tag: "div", Class: "subtitle"}
	ScheduleRegion   = Region{Name: "schedule", Tag: "tbody"}
	TipsRegion       = Region{Name: "tips", Tag: "ul", Class: "tips-list"}
	StrategiesRegion = Region{Name: "strategies", Tag: "div", Class: "strategy-grid"}
)

// locate returns the interior byte range [start, end) of the first element
// matching r. Nested elements with the same tag are balanced, so the range
// always ends at the element's own closing tag. An element that is never
// closed counts as not found.
func locate(doc []byte, r Region) (start, end int, ok bool) {
	z := html.NewTokenizer(bytes.NewReader(doc))
	offset, depth := 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, 0, false
		}
		n := len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != r.Tag {
				break
			}
			if depth > 0 {
				depth++
				break
			}
			if r.Class == "" || classOf(z, hasAttr) == r.Class {
				depth = 1
				start = offset + n
			}
		case html.EndTagToken:
			if depth == 0 {
				break
			}
			name, _ := z.TagName()
			if string(name) != r.Tag {
				break
			}
			depth--
			if depth == 0 {
				return start, offset, true
			}
		}
		offset += n
	}
}

func classOf(z *html.Tokenizer, more bool) string {
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		if string(key) == "class" {
			return strings.TrimSpace(string(val))
		}
	}
	return ""
}

// replaceInterior swaps the interior of r for content. The second return value
// is false, and doc is returned untouched, when the region is absent.
func replaceInterior(doc []byte, r Region, content []byte) ([]byte, bool) {
	start, end, ok := locate(doc, r)
	if !ok {
		return doc, false
	}
	out := make([]byte, 0, len(doc)-(end-start)+len(content))
	out = append(out, doc[:start]...)
	out = append(out, content...)
	out = append(out, doc[end:]...)
	return out, true
}
