package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
)

var dateFormats = []string{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithUnsafe(),
		),
	)
}

// loadContent parses every Markdown file below dir into content items,
// newest first. Items without a date sort last.
func (b *Builder) loadContent(dir string) ([]*model.ContentItem, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		b.log.Debug("content directory not found, skipping", "dir", dir)
		return nil, nil
	}

	md := newMarkdown()
	var items []*model.ContentItem

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		item, err := b.parseContentFile(md, dir, path)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during content collection walk: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date.IsZero() {
			return false
		}
		if items[j].Date.IsZero() {
			return true
		}
		return items[i].Date.After(items[j].Date)
	})
	return items, nil
}

func (b *Builder) parseContentFile(md goldmark.Markdown, root, path string) (*model.ContentItem, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	var fm map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fm)
	if err != nil {
		b.log.Warn("could not parse front matter, treating as plain markdown", "path", path, "error", err)
		body = fileBytes
	}
	if fm == nil {
		fm = make(map[string]interface{})
	}

	var htmlBuf bytes.Buffer
	if err := md.Convert(body, &htmlBuf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", path, err)
	}

	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get relative path for %s: %w", path, err)
	}

	item := &model.ContentItem{
		Title:       contentTitle(fm, path),
		Date:        b.contentDate(fm, path),
		Type:        contentType(fm, relPath),
		SourcePath:  path,
		Permalink:   contentPermalink(fm, relPath),
		ContentHTML: template.HTML(htmlBuf.String()),
		Frontmatter: fm,
	}
	if summary, ok := fm["summary"].(string); ok {
		item.Summary = summary
	}
	if layout, ok := fm["layout"].(string); ok {
		item.Layout = layout
	}
	return item, nil
}

func contentTitle(fm map[string]interface{}, path string) string {
	if title, ok := fm["title"].(string); ok && title != "" {
		return title
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	spaced := strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	return cases.Title(language.English).String(spaced)
}

// contentType is the first directory below the content root, unless front
// matter says otherwise.
func contentType(fm map[string]interface{}, relPath string) string {
	if t, ok := fm["type"].(string); ok && t != "" {
		return t
	}
	parts := strings.Split(filepath.Dir(relPath), string(filepath.Separator))
	if len(parts) > 0 && parts[0] != "." && parts[0] != "" {
		return parts[0]
	}
	return "page"
}

func (b *Builder) contentDate(fm map[string]interface{}, path string) time.Time {
	switch v := fm["date"].(type) {
	case time.Time:
		return v
	case string:
		for _, format := range dateFormats {
			if t, err := time.Parse(format, v); err == nil {
				return t
			}
		}
		b.log.Warn("could not parse date, use YYYY-MM-DD or RFC3339", "path", path, "date", v)
	}
	return time.Time{}
}

// contentPermalink derives /dir/name/ from the file path; a permalink in
// front matter wins. index.md maps to its directory.
func contentPermalink(fm map[string]interface{}, relPath string) string {
	if p, ok := fm["permalink"].(string); ok && p != "" {
		return ensureSlashes(p)
	}
	trimmed := strings.TrimSuffix(filepath.ToSlash(relPath), filepath.Ext(relPath))
	if path.Base(trimmed) == "index" {
		trimmed = path.Dir(trimmed)
	}
	return ensureSlashes(trimmed)
}

func ensureSlashes(p string) string {
	p = "/" + strings.Trim(filepath.ToSlash(filepath.Clean("/"+p)), "/")
	if p != "/" {
		p += "/"
	}
	return p
}
