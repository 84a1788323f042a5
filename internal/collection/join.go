package collection

import "github.com/rebron1900/bymattlee-11ty-starter/internal/model"

// AttachPostsToAuthors sets each author's Posts to the posts whose primary
// author has the same id. Authors without posts keep a nil Posts field.
func AttachPostsToAuthors(authors []*model.Author, posts []*model.Post) {
	for _, author := range authors {
		var authorsPosts []*model.Post
		for _, post := range posts {
			if post.PrimaryAuthor != nil && post.PrimaryAuthor.ID == author.ID {
				authorsPosts = append(authorsPosts, post)
			}
		}
		if len(authorsPosts) > 0 {
			author.Posts = authorsPosts
		}
	}
}

// AttachPostsToTags sets each tag's Posts to the posts whose primary tag
// has the same slug. Tags without posts keep a nil Posts field.
func AttachPostsToTags(tags []*model.Tag, posts []*model.Post) {
	for _, tag := range tags {
		var taggedPosts []*model.Post
		for _, post := range posts {
			if post.PrimaryTag != nil && post.PrimaryTag.Slug == tag.Slug {
				taggedPosts = append(taggedPosts, post)
			}
		}
		if len(taggedPosts) > 0 {
			tag.Posts = taggedPosts
		}
	}
}
