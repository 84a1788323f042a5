package collection

import (
	"strings"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
)

// StripDomain turns a CMS-absolute URL into a site-relative path by
// removing the domain prefix. URLs without the prefix are returned as is.
func StripDomain(url, domain string) string {
	if domain == "" {
		return url
	}
	return strings.TrimPrefix(url, domain)
}

func (b *Builder) strip(url string) string {
	return StripDomain(url, b.domain)
}

func (b *Builder) normalizeAuthor(a *model.Author) {
	if a != nil {
		a.URL = b.strip(a.URL)
	}
}

func (b *Builder) normalizeTag(t *model.Tag) {
	if t != nil {
		t.URL = b.strip(t.URL)
	}
}

// normalizePost rewrites every URL of a post and drops non-public tags.
func (b *Builder) normalizePost(p *model.Post) {
	p.URL = b.strip(p.URL)
	b.normalizeAuthor(p.PrimaryAuthor)
	for _, a := range p.Authors {
		b.normalizeAuthor(a)
	}
	b.normalizeTag(p.PrimaryTag)

	public := p.Tags[:0]
	for _, t := range p.Tags {
		b.normalizeTag(t)
		if t.Visibility == "public" {
			public = append(public, t)
		}
	}
	p.Tags = public
}
