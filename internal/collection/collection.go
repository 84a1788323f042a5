// Package collection builds the named CMS collections handed to templates:
// docs, posts, authors and tags.
package collection

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/ghost"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
)

const publicOnly = "visibility:public"

// Source is the subset of the Ghost client the builders need.
type Source interface {
	Posts(ctx context.Context, p ghost.BrowseParams) ([]*model.Post, error)
	Pages(ctx context.Context, p ghost.BrowseParams) ([]*model.Doc, error)
	Authors(ctx context.Context, p ghost.BrowseParams) ([]*model.Author, error)
	Tags(ctx context.Context, p ghost.BrowseParams) ([]*model.Tag, error)
}

// Collections is the result of one Load.
type Collections struct {
	Docs    []*model.Doc
	Posts   []*model.Post
	Authors []*model.Author
	Tags    []*model.Tag
}

// Builder fetches and shapes collections. Every call re-fetches from the
// source; no state is kept between builds.
type Builder struct {
	src      Source
	domain   string
	pageSize int
	log      *slog.Logger
}

// NewBuilder returns a builder that strips domain from every CMS URL.
func NewBuilder(src Source, domain string, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{src: src, domain: strings.TrimSuffix(domain, "/"), pageSize: PageSize, log: log}
}

// Load builds all four collections concurrently. Each builder awaits its
// own fetches in order. The first failure cancels the others.
func (b *Builder) Load(ctx context.Context) (*Collections, error) {
	var out Collections
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Docs, err = b.Docs(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Posts, err = b.Posts(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Authors, err = b.Authors(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Tags, err = b.Tags(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Docs returns every page with its authors.
func (b *Builder) Docs(ctx context.Context) ([]*model.Doc, error) {
	start := time.Now()
	docs, err := b.src.Pages(ctx, ghost.BrowseParams{Include: "authors", Limit: "all"})
	if err != nil {
		return nil, b.fetchFailed("docs", err)
	}

	for _, doc := range docs {
		doc.URL = b.strip(doc.URL)
		b.normalizeAuthor(doc.PrimaryAuthor)
		for _, a := range doc.Authors {
			b.normalizeAuthor(a)
		}
	}

	b.log.Info("collection loaded", "name", "docs", "count", len(docs), "duration", time.Since(start))
	return docs, nil
}

// Posts returns public posts with public tags only, featured posts first.
func (b *Builder) Posts(ctx context.Context) ([]*model.Post, error) {
	start := time.Now()
	posts, err := b.fetchPublicPosts(ctx)
	if err != nil {
		return nil, b.fetchFailed("posts", err)
	}

	SortFeaturedFirst(posts)

	b.log.Info("collection loaded", "name", "posts", "count", len(posts), "duration", time.Since(start))
	return posts, nil
}

// Authors returns public authors with their posts attached.
func (b *Builder) Authors(ctx context.Context) ([]*model.Author, error) {
	start := time.Now()
	authors, err := b.src.Authors(ctx, ghost.BrowseParams{Limit: "all", Filter: publicOnly})
	if err != nil {
		return nil, b.fetchFailed("authors", err)
	}

	posts, err := b.fetchPublicPosts(ctx)
	if err != nil {
		return nil, b.fetchFailed("authors", err)
	}

	AttachPostsToAuthors(authors, posts)
	for _, a := range authors {
		b.normalizeAuthor(a)
	}

	b.log.Info("collection loaded", "name", "authors", "count", len(authors), "duration", time.Since(start))
	return authors, nil
}

// Tags returns public tags with their posts attached and paginated.
func (b *Builder) Tags(ctx context.Context) ([]*model.Tag, error) {
	start := time.Now()
	tags, err := b.src.Tags(ctx, ghost.BrowseParams{Include: "count.posts", Limit: "all", Filter: publicOnly})
	if err != nil {
		return nil, b.fetchFailed("tags", err)
	}

	posts, err := b.fetchPublicPosts(ctx)
	if err != nil {
		return nil, b.fetchFailed("tags", err)
	}

	AttachPostsToTags(tags, posts)
	for _, t := range tags {
		b.normalizeTag(t)
		t.PagedPosts = Paginate(t, t.Posts, b.pageSize)
	}

	b.log.Info("collection loaded", "name", "tags", "count", len(tags), "duration", time.Since(start))
	return tags, nil
}

func (b *Builder) fetchPublicPosts(ctx context.Context) ([]*model.Post, error) {
	posts, err := b.src.Posts(ctx, ghost.BrowseParams{
		Include: "tags,authors",
		Limit:   "all",
		Filter:  publicOnly,
	})
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		b.normalizePost(p)
	}
	return posts, nil
}

func (b *Builder) fetchFailed(name string, err error) error {
	b.log.Error("collection fetch failed", "name", name, "error", err)
	return fmt.Errorf("loading %s collection: %w", name, err)
}

// SortFeaturedFirst moves featured posts to the top, keeping the API order
// within each group.
func SortFeaturedFirst(posts []*model.Post) {
	slices.SortStableFunc(posts, func(a, b *model.Post) int {
		return cmp.Compare(featuredRank(a), featuredRank(b))
	})
}

func featuredRank(p *model.Post) int {
	if p.Featured {
		return 0
	}
	return 1
}
