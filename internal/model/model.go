package model

import (
	"html/template"
	"time"
)

// ContentItem represents a single piece of local content (e.g., a Markdown page).
type ContentItem struct {
	Title       string
	Date        time.Time
	Type        string
	SourcePath  string
	Permalink   string
	ContentHTML template.HTML
	Frontmatter map[string]interface{}
	Summary     string
	Layout      string
}

// SiteData holds all site-wide data, including configuration and content.
type SiteData struct {
	Config        map[string]interface{}
	Data          map[string]interface{}
	BuildID       string
	BuildTime     time.Time
	Docs          []*Doc
	Posts         []*Post
	Authors       []*Author
	Tags          []*Tag
	ContentItems  []*ContentItem
	ContentByType map[string][]*ContentItem
}

// PagedTags returns every pagination group of every tag, in tag order.
func (s *SiteData) PagedTags() []PageGroup {
	var groups []PageGroup
	for _, t := range s.Tags {
		groups = append(groups, t.PagedPosts...)
	}
	return groups
}
