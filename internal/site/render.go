package site

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/config"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/seo"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/transform"
)

// pageContext is the data every layout is executed with.
type pageContext struct {
	Site *model.SiteData
	Page model.PageData
	// Item is the rendered record: *model.Post, *model.Doc, *model.Author,
	// model.PageGroup or *model.ContentItem. Nil for list pages.
	Item any
}

type renderer struct {
	outputDir  string
	layouts    *layoutSet
	transforms transform.Chain
	site       *model.SiteData
	cfg        config.Config
	log        *slog.Logger
	sitemap    *seo.SitemapBuilder
	pages      int
}

func (r *renderer) renderAll() error {
	r.sitemap = seo.NewSitemapBuilder(r.cfg.HomeURL())

	steps := []struct {
		name string
		fn   func() error
	}{
		{"docs", r.renderDocs},
		{"posts", r.renderPosts},
		{"authors", r.renderAuthors},
		{"tags", r.renderTags},
		{"content", r.renderContent},
		{"home", r.renderHome},
		{"posts list", r.renderPostList},
		{"feeds", r.renderFeeds},
		{"sitemap", r.renderSitemap},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("rendering %s: %w", s.name, err)
		}
	}
	return nil
}

// writable reports whether a CMS URL can be written as a local path.
// Absolute URLs mean the domain was not stripped.
func (r *renderer) writable(kind, id, url string) bool {
	if strings.HasPrefix(url, "/") {
		return true
	}
	r.log.Warn("skipping record without a site-relative URL", "kind", kind, "id", id, "url", url)
	return false
}

func (r *renderer) renderDocs() error {
	layout := r.layouts.pick("page.html", defaultSingle)
	for _, doc := range r.site.Docs {
		if !r.writable("doc", doc.ID, doc.URL) {
			continue
		}
		ctx := pageContext{
			Site: r.site,
			Page: r.pageData(doc.Title, doc.URL, template.HTML(doc.HTML), layout),
			Item: doc,
		}
		ctx.Page.Date = doc.PublishedAt.UTC().Format("2006-01-02")
		if err := r.renderHTML(doc.URL, layout, ctx); err != nil {
			return err
		}
		r.sitemap.Add(doc.URL, doc.UpdatedAt, "monthly", "0.6")
	}
	return nil
}

func (r *renderer) renderPosts() error {
	layout := r.layouts.pick("post.html", "single-post.html", defaultSingle)
	for _, post := range r.site.Posts {
		if !r.writable("post", post.ID, post.URL) {
			continue
		}
		ctx := pageContext{
			Site: r.site,
			Page: r.pageData(post.Title, post.URL, template.HTML(post.HTML), layout),
			Item: post,
		}
		ctx.Page.Date = post.PublishedAt.UTC().Format("2006-01-02")
		if err := r.renderHTML(post.URL, layout, ctx); err != nil {
			return err
		}
		lastMod := post.UpdatedAt
		if lastMod.IsZero() {
			lastMod = post.PublishedAt
		}
		r.sitemap.Add(post.URL, lastMod, "weekly", "0.8")
	}
	return nil
}

func (r *renderer) renderAuthors() error {
	if !r.layouts.has("author.html") {
		r.log.Debug("author.html not found, skipping author pages")
		return nil
	}
	for _, author := range r.site.Authors {
		if !r.writable("author", author.ID, author.URL) {
			continue
		}
		ctx := pageContext{
			Site: r.site,
			Page: r.pageData(author.Name, author.URL, "", "author.html"),
			Item: author,
		}
		if err := r.renderHTML(author.URL, "author.html", ctx); err != nil {
			return err
		}
		r.sitemap.Add(author.URL, r.site.BuildTime, "weekly", "0.5")
	}
	return nil
}

func (r *renderer) renderTags() error {
	if !r.layouts.has("tag.html") {
		r.log.Debug("tag.html not found, skipping tag pages")
		return nil
	}
	for _, tag := range r.site.Tags {
		for _, group := range tag.PagedPosts {
			ctx := pageContext{
				Site: r.site,
				Page: r.pageData(tag.Name, group.URL, "", "tag.html"),
				Item: group,
			}
			ctx.Page.Params = map[string]interface{}{"tag": tag}
			if err := r.renderHTML(group.URL, "tag.html", ctx); err != nil {
				return err
			}
			if group.First {
				r.sitemap.Add(group.URL, r.site.BuildTime, "weekly", "0.5")
			}
		}
	}
	return nil
}

func (r *renderer) renderContent() error {
	for _, item := range r.site.ContentItems {
		candidates := []string{}
		if item.Layout != "" {
			candidates = append(candidates, item.Layout)
		}
		if item.Type == "post" || item.Type == "posts" {
			candidates = append(candidates, "single-post.html")
		}
		candidates = append(candidates, defaultSingle)

		layout := r.layouts.pick(candidates...)
		if item.Layout != "" && layout != resolve(item.Layout) {
			r.log.Warn("front matter layout not found", "layout", item.Layout, "item", item.Title, "using", layout)
		}

		ctx := pageContext{
			Site: r.site,
			Page: r.pageData(item.Title, item.Permalink, item.ContentHTML, layout),
			Item: item,
		}
		ctx.Page.Params = item.Frontmatter
		if !item.Date.IsZero() {
			ctx.Page.Date = item.Date.Format("2006-01-02")
		}
		if err := r.renderHTML(item.Permalink, layout, ctx); err != nil {
			return err
		}
		r.sitemap.Add(item.Permalink, item.Date, "monthly", "0.5")
	}
	return nil
}

func (r *renderer) renderHome() error {
	if !r.layouts.has("home.html") {
		return fmt.Errorf("homepage layout 'home.html' not found; create it in the layouts directory")
	}
	ctx := pageContext{Site: r.site, Page: r.pageData(r.cfg.SiteTitle, "/", "", "home.html")}
	if err := r.renderHTML("/", "home.html", ctx); err != nil {
		return err
	}
	r.sitemap.Add("/", r.site.BuildTime, "daily", "1.0")
	return nil
}

func (r *renderer) renderPostList() error {
	if !r.layouts.has("list-posts.html") {
		r.log.Debug("list-posts.html not found, skipping posts list page")
		return nil
	}
	ctx := pageContext{Site: r.site, Page: r.pageData("Posts", "/posts/", "", "list-posts.html")}
	return r.renderHTML("/posts/", "list-posts.html", ctx)
}

func (r *renderer) renderFeeds() error {
	for name, t := range r.layouts.feeds {
		ctx := pageContext{Site: r.site, Page: r.pageData(r.cfg.SiteTitle, "/"+name, "", name)}
		var buf bytes.Buffer
		if err := t.Execute(&buf, ctx); err != nil {
			return fmt.Errorf("failed to execute feed template '%s': %w", name, err)
		}
		if err := r.write("/"+name, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderSitemap() error {
	if _, ok := r.layouts.feeds["sitemap.xml"]; ok {
		return nil
	}
	out, err := r.sitemap.Build()
	if err != nil {
		return fmt.Errorf("building sitemap: %w", err)
	}
	return r.write("/sitemap.xml", out)
}

func (r *renderer) pageData(title, url string, content template.HTML, layout string) model.PageData {
	return model.PageData{
		SiteTitle: r.cfg.SiteTitle,
		PageTitle: title,
		URL:       url,
		Content:   content,
		BaseURL:   r.cfg.BaseURL,
		Layout:    layout,
	}
}

func (r *renderer) renderHTML(urlPath, layout string, ctx pageContext) error {
	t, ok := r.layouts.html[layout]
	if !ok {
		return fmt.Errorf("layout '%s' not found", layout)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, r.layouts.entry[layout], ctx); err != nil {
		return fmt.Errorf("failed to execute template '%s' for '%s': %w", layout, urlPath, err)
	}
	return r.write(urlPath, buf.Bytes())
}

// write stores content under outputDir. Paths ending in "/" become
// directory indexes.
func (r *renderer) write(urlPath string, content []byte) error {
	outputPath := filepath.Join(r.outputDir, filepath.FromSlash(urlPath))
	if strings.HasSuffix(urlPath, "/") {
		outputPath = filepath.Join(outputPath, "index.html")
	}
	if err := validatePathWithinBase(r.outputDir, outputPath); err != nil {
		return fmt.Errorf("refusing to write %q: %w", urlPath, err)
	}

	content, err := r.transforms.Apply(content, outputPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}
	r.pages++
	r.log.Debug("page written", "url", urlPath, "path", outputPath)
	return nil
}

// validatePathWithinBase rejects paths that escape base, e.g. a CMS URL
// containing "..".
func validatePathWithinBase(basePath, targetPath string) error {
	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}
	absTarget, err := filepath.Abs(filepath.Clean(targetPath))
	if err != nil {
		return fmt.Errorf("invalid target path: %w", err)
	}
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: path escapes base directory")
	}
	return nil
}
