// Package filters holds the template filters and shortcodes registered
// into every layout.
package filters

import (
	"html/template"
	"strconv"
	"time"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/sanity"
)

// Options carries the build-scoped values some filters close over.
type Options struct {
	HomeURL   string
	CDNURL    string
	BuildID   string
	SpriteURL string
	Now       func() time.Time
}

// FuncMap returns every filter and shortcode under its template name.
func FuncMap(opts Options) template.FuncMap {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sprite := opts.SpriteURL
	if sprite == "" {
		sprite = "/assets/svgs/sprite.svg"
	}

	return template.FuncMap{
		// filters
		"absoluteUrl":        func(path string) string { return AbsoluteURL(opts.HomeURL, path) },
		"cacheBust":          func(url string) string { return CacheBust(opts.BuildID, url) },
		"htmlDate":           HTMLDate,
		"htmlDateString":     HTMLDate,
		"readableDate":       ReadableDate,
		"rssLastUpdatedDate": RSSLastUpdatedDate,
		"rssDate":            RSSDate,
		"articleUrl":         ArticleURL,
		"articleCategoryUrl": ArticleCategoryURL,
		"blocksToHtml":       blocksToHTML,
		"highlight":          Highlight,
		"getReadingTime":     ReadingTime,
		"stripHtml":          StripHTML,
		"safe":               func(s string) template.HTML { return template.HTML(s) },

		// shortcodes
		"imageUrl":            func(image string, width int) string { return ImageURL(opts.CDNURL, image, width) },
		"imageSrcset":         func(image string) string { return ImageSrcset(opts.CDNURL, image) },
		"isSamePageOrSection": IsSamePageOrSection,
		"svg":                 func(name string) template.HTML { return SVG(sprite, name) },
		"currentYear":         func() string { return strconv.Itoa(now().Year()) },
	}
}

func blocksToHTML(v any) (template.HTML, error) {
	blocks, err := sanity.DecodeBlocks(v)
	if err != nil {
		return "", err
	}
	return template.HTML(sanity.RenderBlocks(blocks)), nil
}
