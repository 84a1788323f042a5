package collection

import "github.com/rebron1900/bymattlee-11ty-starter/internal/model"

// PageSize is the number of posts on one tag archive page.
const PageSize = 7

// Paginate splits the posts of one tag into pages of size posts.
// Last is set on the page whose number equals the page count.
func Paginate(tag *model.Tag, posts []*model.Post, size int) []model.PageGroup {
	if size <= 0 {
		size = PageSize
	}
	total := (len(posts) + size - 1) / size

	groups := make([]model.PageGroup, 0, total)
	for i := 0; i < total; i++ {
		start := i * size
		end := min(start+size, len(posts))
		number := i + 1

		groups = append(groups, model.PageGroup{
			TagName: tag.Name,
			TagSlug: tag.Slug,
			Number:  number,
			Total:   total,
			URL:     model.TagPageURL(tag.Slug, number),
			Posts:   posts[start:end],
			First:   number == 1,
			Last:    number == total,
		})
	}
	return groups
}
