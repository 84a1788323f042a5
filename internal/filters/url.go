package filters

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

// ImageWidths are the srcset candidates generated for CDN images.
var ImageWidths = []int{200, 400, 600, 800, 1000, 1200, 1400, 1600, 1800}

// AbsoluteURL prefixes path with home. An empty home leaves path unchanged.
func AbsoluteURL(home, path string) string {
	if home == "" {
		return path
	}
	return strings.TrimSuffix(home, "/") + path
}

// CacheBust appends the build id as a version query parameter.
func CacheBust(buildID, url string) string {
	if buildID == "" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "v=" + buildID
}

// ArticleURL returns the site path of a post slug.
func ArticleURL(slug string) string {
	return "/" + strings.Trim(slug, "/") + "/"
}

// ArticleCategoryURL returns the archive path of a tag slug.
func ArticleCategoryURL(slug string) string {
	return "/tag/" + strings.Trim(slug, "/") + "/"
}

func onCDN(cdnURL, image string) bool {
	return cdnURL != "" && strings.HasPrefix(image, cdnURL)
}

// ImageURL returns the CDN rendition of image at width. Non-CDN images and
// non-positive widths are returned unchanged.
func ImageURL(cdnURL, image string, width int) string {
	if !onCDN(cdnURL, image) || width <= 0 {
		return image
	}
	return fmt.Sprintf("%s!%dw", image, width)
}

// ImageSrcset builds a srcset attribute value. CDN images get one candidate
// per entry of ImageWidths, other images are used as is.
func ImageSrcset(cdnURL, image string) string {
	if !onCDN(cdnURL, image) {
		return image
	}
	candidates := make([]string, 0, len(ImageWidths))
	for _, w := range ImageWidths {
		candidates = append(candidates, fmt.Sprintf("%s %dw", ImageURL(cdnURL, image, w), w))
	}
	return strings.Join(candidates, ", ")
}

// IsSamePageOrSection reports whether a navigation link points at the
// current page or one of its ancestors. The root link only matches itself,
// and sections match on whole path segments.
func IsSamePageOrSection(pageURL, linkURL string) bool {
	if pageURL == linkURL {
		return true
	}
	if linkURL == "/" || linkURL == "" {
		return false
	}
	section := strings.TrimSuffix(linkURL, "/")
	return pageURL == section || strings.HasPrefix(pageURL, section+"/")
}

// SVG references a symbol in the SVG sprite.
func SVG(spriteURL, name string) template.HTML {
	name = html.EscapeString(name)
	return template.HTML(fmt.Sprintf(
		`<svg class="svg svg--%s" aria-hidden="true" focusable="false"><use xlink:href="%s#%s"></use></svg>`,
		name, html.EscapeString(spriteURL), name,
	))
}
