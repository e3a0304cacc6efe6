package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/models"
)

// DefaultRecentCount is the number of posts ListRecent returns by default.
const DefaultRecentCount = 3

const postNotFoundMessage = "Post not found"

type blogService struct {
	postRepo db.BlogPostRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewBlogService creates a new BlogService instance.
func NewBlogService(pr db.BlogPostRepository, logger *zap.Logger) BlogService {
	return &blogService{postRepo: pr, logger: logger, now: time.Now}
}

var newestFirst = db.Query{}.Order("createdAt", db.Desc)

// ListAll returns every post, drafts included, newest first.
func (s *blogService) ListAll(ctx context.Context) ([]models.BlogPost, error) {
	return s.list(ctx, newestFirst, "Failed to fetch posts")
}

func (s *blogService) ListPublished(ctx context.Context) ([]models.BlogPost, error) {
	return s.list(ctx, newestFirst.Where("published", true), "Failed to fetch posts")
}

func (s *blogService) ListRecent(ctx context.Context, count int) ([]models.BlogPost, error) {
	if count <= 0 {
		count = DefaultRecentCount
	}
	return s.list(ctx, newestFirst.Where("published", true).Take(count), "Failed to fetch posts")
}

func (s *blogService) ListByTag(ctx context.Context, tag string) ([]models.BlogPost, error) {
	q := newestFirst.Where("published", true).WhereArrayContains("tags", tag)
	return s.list(ctx, q, "Failed to fetch posts")
}

func (s *blogService) GetByID(ctx context.Context, postID string) (*models.BlogPost, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, postError(err, "Failed to fetch post")
	}
	return post, nil
}

// GetBySlug returns the first post with the given slug. Which one wins when
// several posts share a slug is up to the store.
func (s *blogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	posts, err := s.postRepo.List(ctx, db.Query{}.Where("slug", slug).Take(1))
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to fetch post")
	}
	if len(posts) == 0 {
		return nil, apperror.NotFound(postNotFoundMessage)
	}
	return &posts[0], nil
}

// Create stores a new post authored by authorID. The slug is derived from
// the title and an empty excerpt is generated from the content.
func (s *blogService) Create(ctx context.Context, authorID string, input models.BlogPostInput) (*models.BlogPost, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperror.Validation("Title is required", nil)
	}
	post := &models.BlogPost{
		Title:      input.Title,
		Slug:       Slugify(input.Title),
		Content:    input.Content,
		Excerpt:    input.Excerpt,
		Category:   input.Category,
		Published:  input.Published,
		Author:     authorID,
		Tags:       append([]string{}, input.Tags...),
		CoverImage: input.CoverImage,
	}
	if post.Excerpt == "" {
		post.Excerpt = GenerateExcerpt(post.Content, DefaultExcerptLength)
	}

	id, err := s.postRepo.Create(ctx, post)
	if err != nil {
		s.logger.Error("Error creating post", zap.String("author", authorID), zap.Error(err))
		return nil, apperror.Wrap(err, "Failed to create post")
	}
	now := s.now().UTC()
	post.ID = id
	post.CreatedAt = now
	post.UpdatedAt = now
	return post, nil
}

func (s *blogService) Update(ctx context.Context, postID string, patch models.BlogPostPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return apperror.Validation("Title is required", nil)
	}
	if err := s.postRepo.Update(ctx, postID, PostPatchFields(patch)); err != nil {
		return postError(err, "Failed to update post")
	}
	return nil
}

func (s *blogService) Delete(ctx context.Context, postID string) error {
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return apperror.Wrap(err, "Failed to delete post")
	}
	return nil
}

// PostPatchFields returns the document fields a patch writes, including the
// re-derived slug when a title is present.
func PostPatchFields(patch models.BlogPostPatch) map[string]interface{} {
	fields := make(map[string]interface{})
	if patch.Title != nil {
		fields["title"] = *patch.Title
		fields["slug"] = Slugify(*patch.Title)
	}
	if patch.Content != nil {
		fields["content"] = *patch.Content
	}
	if patch.Excerpt != nil {
		fields["excerpt"] = *patch.Excerpt
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Published != nil {
		fields["published"] = *patch.Published
	}
	if patch.Tags != nil {
		fields["tags"] = append([]string{}, (*patch.Tags)...)
	}
	if patch.CoverImage != nil {
		fields["coverImage"] = *patch.CoverImage
	}
	return fields
}

func (s *blogService) list(ctx context.Context, q db.Query, fallback string) ([]models.BlogPost, error) {
	posts, err := s.postRepo.List(ctx, q)
	if err != nil {
		s.logger.Error("Error listing posts", zap.Error(err))
		return nil, apperror.Wrap(err, fallback)
	}
	return posts, nil
}

func postError(err error, fallback string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperror.NotFound(postNotFoundMessage)
	}
	return apperror.Wrap(err, fallback)
}
