package model

import "time"

// Post is a read-only projection of a Ghost post.
type Post struct {
	ID            string    `json:"id"`
	UUID          string    `json:"uuid"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	URL           string    `json:"url"`
	HTML          string    `json:"html"`
	Excerpt       string    `json:"excerpt"`
	CustomExcerpt string    `json:"custom_excerpt"`
	FeatureImage  string    `json:"feature_image"`
	Featured      bool      `json:"featured"`
	Visibility    string    `json:"visibility"`
	PublishedAt   time.Time `json:"published_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ReadingTime   int       `json:"reading_time"`
	PrimaryAuthor *Author   `json:"primary_author"`
	Authors       []*Author `json:"authors"`
	PrimaryTag    *Tag      `json:"primary_tag"`
	Tags          []*Tag    `json:"tags"`
}

// Doc is a Ghost page. It is not called Page so it never collides with
// the per-render page object templates receive.
type Doc struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	URL           string    `json:"url"`
	HTML          string    `json:"html"`
	FeatureImage  string    `json:"feature_image"`
	PublishedAt   time.Time `json:"published_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PrimaryAuthor *Author   `json:"primary_author"`
	Authors       []*Author `json:"authors"`
}

// Author is a Ghost author. Posts is attached after fetching and stays nil
// when the author has no public posts.
type Author struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	ProfileImage string  `json:"profile_image"`
	CoverImage   string  `json:"cover_image"`
	Bio          string  `json:"bio"`
	Website      string  `json:"website"`
	Posts        []*Post `json:"-"`
}

// TagCount mirrors the count.posts include of the tags endpoint.
type TagCount struct {
	Posts int `json:"posts"`
}

// Tag is a Ghost tag. Posts and PagedPosts are derived after fetching.
type Tag struct {
	ID           string      `json:"id"`
	Slug         string      `json:"slug"`
	Name         string      `json:"name"`
	URL          string      `json:"url"`
	Description  string      `json:"description"`
	FeatureImage string      `json:"feature_image"`
	Visibility   string      `json:"visibility"`
	Count        *TagCount   `json:"count,omitempty"`
	Posts        []*Post     `json:"-"`
	PagedPosts   []PageGroup `json:"-"`
}

// PageGroup is one page of a paginated tag archive.
type PageGroup struct {
	TagName string
	TagSlug string
	Number  int
	Total   int
	URL     string
	Posts   []*Post
	First   bool
	Last    bool
}

// PrevURL returns the URL of the previous page, or "" on the first page.
func (g PageGroup) PrevURL() string {
	if g.First {
		return ""
	}
	return TagPageURL(g.TagSlug, g.Number-1)
}

// NextURL returns the URL of the next page, or "" on the last page.
func (g PageGroup) NextURL() string {
	if g.Last {
		return ""
	}
	return TagPageURL(g.TagSlug, g.Number+1)
}
