// Package transform post-processes rendered output files.
package transform

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// Func rewrites the content of the file written to outputPath.
type Func func(content []byte, outputPath string) ([]byte, error)

// Named pairs a transform with the name it is logged under.
type Named struct {
	Name string
	Fn   Func
}

// Chain applies transforms in order.
type Chain []Named

// Apply runs every transform, stopping at the first error.
func (c Chain) Apply(content []byte, outputPath string) ([]byte, error) {
	var err error
	for _, t := range c {
		content, err = t.Fn(content, outputPath)
		if err != nil {
			return nil, fmt.Errorf("transform %s on %s: %w", t.Name, outputPath, err)
		}
	}
	return content, nil
}

// Default returns the build's transform chain. HTML is only minified
// outside development.
func Default(isDev bool, credit string) Chain {
	var c Chain
	if !isDev {
		c = append(c, Named{Name: "minifyHtml", Fn: MinifyHTML()})
	}
	if credit != "" {
		c = append(c, Named{Name: "addHeaderCredit", Fn: AddHeaderCredit(credit)})
	}
	return c
}

func isHTML(outputPath string) bool {
	return strings.EqualFold(filepath.Ext(outputPath), ".html")
}

// MinifyHTML minifies .html outputs.
func MinifyHTML() Func {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})

	return func(content []byte, outputPath string) ([]byte, error) {
		if !isHTML(outputPath) {
			return content, nil
		}
		return m.Bytes("text/html", content)
	}
}

var doctypeRe = regexp.MustCompile(`(?i)^\s*<!doctype[^>]*>`)

// AddHeaderCredit inserts an HTML comment with credit right after the
// doctype, or at the top when there is none.
func AddHeaderCredit(credit string) Func {
	comment := []byte("<!-- " + strings.ReplaceAll(credit, "--", "-") + " -->")

	return func(content []byte, outputPath string) ([]byte, error) {
		if !isHTML(outputPath) {
			return content, nil
		}

		var out bytes.Buffer
		out.Grow(len(content) + len(comment) + 1)
		if loc := doctypeRe.FindIndex(content); loc != nil {
			out.Write(content[:loc[1]])
			out.Write(comment)
			out.Write(content[loc[1]:])
		} else {
			out.Write(comment)
			out.Write(content)
		}
		return out.Bytes(), nil
	}
}
