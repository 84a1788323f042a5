package sanity

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Block is a Portable Text block.
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key"`
	Style    string    `json:"style"`
	ListItem string    `json:"listItem"`
	Level    int       `json:"level"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs"`
}

// Span is a run of text with marks.
type Span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// MarkDef is an annotation referenced from span marks, e.g. a link.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href"`
}

var styleTags = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"h5":         "h5",
	"h6":         "h6",
	"blockquote": "blockquote",
}

var decoratorTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

// DecodeBlocks converts decoded JSON (e.g. a Sanity query result held as
// []any) into blocks.
func DecodeBlocks(v any) ([]Block, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []Block:
		return b, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("sanity: encoding blocks: %w", err)
	}
	var blocks []Block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("sanity: decoding blocks: %w", err)
	}
	return blocks, nil
}

// RenderBlocks renders Portable Text to HTML. Consecutive list items are
// grouped into one list. Unknown block types are skipped.
func RenderBlocks(blocks []Block) string {
	var sb strings.Builder
	openList := ""

	closeList := func() {
		if openList != "" {
			sb.WriteString("</" + openList + ">")
			openList = ""
		}
	}

	for _, b := range blocks {
		if b.Type != "block" {
			closeList()
			continue
		}

		if b.ListItem != "" {
			tag := "ul"
			if b.ListItem == "number" {
				tag = "ol"
			}
			if openList != tag {
				closeList()
				sb.WriteString("<" + tag + ">")
				openList = tag
			}
			sb.WriteString("<li>")
			renderSpans(&sb, b)
			sb.WriteString("</li>")
			continue
		}

		closeList()
		tag, ok := styleTags[b.Style]
		if !ok {
			tag = "p"
		}
		sb.WriteString("<" + tag + ">")
		renderSpans(&sb, b)
		sb.WriteString("</" + tag + ">")
	}
	closeList()

	return sb.String()
}

func renderSpans(sb *strings.Builder, b Block) {
	defs := make(map[string]MarkDef, len(b.MarkDefs))
	for _, d := range b.MarkDefs {
		defs[d.Key] = d
	}

	for _, span := range b.Children {
		var open, closing []string
		for _, mark := range span.Marks {
			if tag, ok := decoratorTags[mark]; ok {
				open = append(open, "<"+tag+">")
				closing = append([]string{"</" + tag + ">"}, closing...)
				continue
			}
			if def, ok := defs[mark]; ok && def.Type == "link" {
				open = append(open, `<a href="`+html.EscapeString(def.Href)+`">`)
				closing = append([]string{"</a>"}, closing...)
			}
		}

		for _, o := range open {
			sb.WriteString(o)
		}
		sb.WriteString(strings.ReplaceAll(html.EscapeString(span.Text), "\n", "<br>"))
		for _, c := range closing {
			sb.WriteString(c)
		}
	}
}
