package state

import (
	"context"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/core"
	"github.com/example/portfolio/internal/models"
)

// blogRequest runs call with the blog slice's pending/settled bookkeeping.
// On failure the slice keeps its posts and only records the error.
func blogRequest(s *Store, fallback string, call func() (func(*BlogState), error)) error {
	s.commit(func(st *State) {
		st.Blog.Loading = true
		setError(&st.Blog.Error, &st.Blog.ErrorKind, nil)
	})

	apply, err := call()
	if err != nil {
		appErr := apperror.Wrap(err, fallback)
		s.commit(func(st *State) {
			st.Blog.Loading = false
			setError(&st.Blog.Error, &st.Blog.ErrorKind, appErr)
		})
		return appErr
	}
	s.commit(func(st *State) {
		apply(&st.Blog)
		st.Blog.Loading = false
	})
	return nil
}

// FetchBlogPosts loads every post, drafts included, newest first.
type FetchBlogPosts struct{}

func (FetchBlogPosts) Type() string { return "blog/fetchPosts" }

func (FetchBlogPosts) run(ctx context.Context, s *Store) error {
	return blogRequest(s, "Failed to fetch posts", func() (func(*BlogState), error) {
		posts, err := s.services.Blog.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return func(b *BlogState) { b.Posts = posts }, nil
	})
}

// FetchPublishedPosts loads published posts, newest first. A non-empty Tag
// narrows the list to posts carrying it.
type FetchPublishedPosts struct {
	Tag string
}

func (FetchPublishedPosts) Type() string { return "blog/fetchPublishedPosts" }

func (a FetchPublishedPosts) run(ctx context.Context, s *Store) error {
	return blogRequest(s, "Failed to fetch posts", func() (func(*BlogState), error) {
		var (
			posts []models.BlogPost
			err   error
		)
		if a.Tag != "" {
			posts, err = s.services.Blog.ListByTag(ctx, a.Tag)
		} else {
			posts, err = s.services.Blog.ListPublished(ctx)
		}
		if err != nil {
			return nil, err
		}
		return func(b *BlogState) { b.Posts = posts }, nil
	})
}

// FetchRecentPosts loads the Count most recent published posts.
type FetchRecentPosts struct {
	Count int
}

func (FetchRecentPosts) Type() string { return "blog/fetchRecentPosts" }

func (a FetchRecentPosts) run(ctx context.Context, s *Store) error {
	return blogRequest(s, "Failed to fetch posts", func() (func(*BlogState), error) {
		posts, err := s.services.Blog.ListRecent(ctx, a.Count)
		if err != nil {
			return nil, err
		}
		return func(b *BlogState) { b.Posts = posts }, nil
	})
}

// FetchBlogPostByID loads one post into CurrentPost.
type FetchBlogPostByID struct {
	ID string
}

func (FetchBlogPostByID) Type() string { return "blog/fetchPostById" }

func (a FetchBlogPostByID) run(ctx context.Context, s *Store) error {
	return blogRequest(s, "Failed to fetch post", func() (func(*BlogState), error) {
		post, err := s.services.Blog.GetByID(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		return func(b *BlogState) { b.CurrentPost = post }, nil
	})
}

// FetchPostBySlug loads the post with Slug into CurrentPost.
type FetchPostBySlug struct {
	Slug string
}

func (FetchPostBySlug) Type() string { return "blog/fetchPostBySlug" }

func (a FetchPostBySlug) run(ctx context.Context, s *Store) error {
	return blogRequest(s, "Failed to fetch post", func() (func(*BlogState), error) {
		post, err := s.services.Blog.GetBySlug(ctx, a.Slug)
		if err != nil {
			return nil, err
		}
		return func(b *BlogState) { b.CurrentPost = post }, nil
	})
}

// CreateBlogPost stores a new post authored by the signed-in user and puts
// it at the head of Posts.
type CreateBlogPost struct {
	Input models.BlogPostInput
}

func (CreateBlogPost) Type() string { return "blog/createPost" }

func (a CreateBlogPost) run(ctx context.Context, s *Store) error {
	author := s.currentUID()
	return blogRequest(s, "Failed to create post", func() (func(*BlogState), error) {
		if author == "" {
			return nil, errNotSignedIn
		}
		post, err := s.services.Blog.Create(ctx, author, a.Input)
		if err != nil {
			return nil, err
		}
		return func(b *BlogState) {
			b.Posts = append([]models.BlogPost{post.Clone()}, b.Posts...)
		}, nil
	})
}

// UpdateBlogPost writes Patch and mirrors it into Posts and CurrentPost
// without re-reading the post. A post that is neither listed nor current is
// only written; CurrentPost keeps whatever post was being viewed.
type UpdateBlogPost struct {
	ID    string
	Patch models.BlogPostPatch
}

func (UpdateBlogPost) Type() string { return "blog/updatePost" }

func (a UpdateBlogPost) run(ctx context.Context, s *Store) error {
	return blogRequest(s, "Failed to update post", func() (func(*BlogState), error) {
		if err := s.services.Blog.Update(ctx, a.ID, a.Patch); err != nil {
			return nil, err
		}
		return func(b *BlogState) {
			var base *models.BlogPost
			if b.CurrentPost != nil && b.CurrentPost.ID == a.ID {
				base = b.CurrentPost
			}
			idx := -1
			for i := range b.Posts {
				if b.Posts[i].ID == a.ID {
					idx = i
					base = &b.Posts[i]
					break
				}
			}
			// Without a loaded copy there is nothing to mirror the patch onto.
			if base == nil {
				return
			}
			updated := a.Patch.Apply(*base)
			if a.Patch.Title != nil {
				updated.Slug = core.Slugify(*a.Patch.Title)
			}
			updated.UpdatedAt = s.now()
			if idx >= 0 {
				b.Posts[idx] = updated
			}
			current := updated.Clone()
			b.CurrentPost = &current
		}, nil
	})
}

// DeleteBlogPost removes a post.
type DeleteBlogPost struct {
	ID string
}

func (DeleteBlogPost) Type() string { return "blog/deletePost" }

func (a DeleteBlogPost) run(ctx context.Context, s *Store) error {
	return blogRequest(s, "Failed to delete post", func() (func(*BlogState), error) {
		if err := s.services.Blog.Delete(ctx, a.ID); err != nil {
			return nil, err
		}
		return func(b *BlogState) {
			kept := make([]models.BlogPost, 0, len(b.Posts))
			for _, p := range b.Posts {
				if p.ID != a.ID {
					kept = append(kept, p)
				}
			}
			b.Posts = kept
			if b.CurrentPost != nil && b.CurrentPost.ID == a.ID {
				b.CurrentPost = nil
			}
		}, nil
	})
}

// ClearCurrentPost drops CurrentPost.
type ClearCurrentPost struct{}

func (ClearCurrentPost) Type() string { return "blog/clearCurrentPost" }

func (ClearCurrentPost) run(_ context.Context, s *Store) error {
	s.commit(func(st *State) { st.Blog.CurrentPost = nil })
	return nil
}
