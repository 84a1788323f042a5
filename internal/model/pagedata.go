package model

import (
	"fmt"
	"html/template"
)

// PageData is the per-render page object every layout receives as .Page.
type PageData struct {
	SiteTitle string
	PageTitle string
	URL       string
	Content   template.HTML
	BaseURL   string
	Date      string
	Params    map[string]interface{}
	Layout    string
}

// TagPageURL returns the site-relative URL of page n of a tag archive.
func TagPageURL(slug string, n int) string {
	if n <= 1 {
		return fmt.Sprintf("/tag/%s/", slug)
	}
	return fmt.Sprintf("/tag/%s/page/%d/", slug, n)
}
