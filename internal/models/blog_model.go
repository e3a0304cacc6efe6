package models

import "time"

// BlogPost is a document in the `blogPosts` collection.
// Slug is derived from Title and is not guaranteed unique.
type BlogPost struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt"`
	Category   string    `json:"category"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Author     string    `json:"author"`
	Tags       []string  `json:"tags"`
	CoverImage string    `json:"coverImage,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p BlogPost) Clone() BlogPost {
	out := p
	out.Tags = append([]string{}, p.Tags...)
	return out
}

// BlogPostInput carries the editable fields of a post.
type BlogPostInput struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Category   string   `json:"category"`
	Published  bool     `json:"published"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"coverImage,omitempty"`
}

// BlogPostPatch is a partial post update; nil fields are left untouched.
type BlogPostPatch struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Published  *bool     `json:"published,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	CoverImage *string   `json:"coverImage,omitempty"`
}

// Apply returns p with the patch merged in. Slug and timestamps are the
// caller's responsibility.
func (patch BlogPostPatch) Apply(p BlogPost) BlogPost {
	out := p.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Content != nil {
		out.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		out.Excerpt = *patch.Excerpt
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.Published != nil {
		out.Published = *patch.Published
	}
	if patch.Tags != nil {
		out.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.CoverImage != nil {
		out.CoverImage = *patch.CoverImage
	}
	return out
}
