package filters

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var codeFormatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.PreventSurroundingPre(true),
)

// Highlight syntax-highlights every <pre><code> block of an HTML fragment.
// The language comes from a language-* class when present and is detected
// from the code otherwise. Output uses chroma CSS classes.
func Highlight(fragment string) (template.HTML, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", fmt.Errorf("highlight: parsing html: %w", err)
	}

	for _, n := range nodes {
		if err := highlightTree(n); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("highlight: rendering html: %w", err)
		}
	}
	return template.HTML(buf.String()), nil
}

func highlightTree(n *html.Node) error {
	if n.Type == html.ElementNode && n.DataAtom == atom.Code && n.Parent != nil && n.Parent.DataAtom == atom.Pre {
		return highlightBlock(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := highlightTree(c); err != nil {
			return err
		}
	}
	return nil
}

func highlightBlock(code *html.Node) error {
	source := textContent(code)

	lexer := lexerFor(code, source)
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("highlight: tokenising: %w", err)
	}

	var out bytes.Buffer
	if err := codeFormatter.Format(&out, styles.Fallback, iterator); err != nil {
		return fmt.Errorf("highlight: formatting: %w", err)
	}

	highlighted, err := html.ParseFragment(&out, code)
	if err != nil {
		return fmt.Errorf("highlight: parsing highlighted code: %w", err)
	}

	for c := code.FirstChild; c != nil; {
		next := c.NextSibling
		code.RemoveChild(c)
		c = next
	}
	for _, h := range highlighted {
		code.AppendChild(h)
	}
	addClass(code, "chroma")
	return nil
}

func lexerFor(code *html.Node, source string) chroma.Lexer {
	for _, class := range strings.Fields(attr(code, "class")) {
		if lang, ok := strings.CutPrefix(class, "language-"); ok {
			if l := lexers.Get(lang); l != nil {
				return l
			}
		}
	}
	if l := lexers.Analyse(source); l != nil {
		return l
	}
	return lexers.Fallback
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func addClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + class)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}
