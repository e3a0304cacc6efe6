package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/portfolio/internal/models"
)

type blogPostRepository struct {
	store DocumentStore
}

// NewBlogPostRepository creates a BlogPostRepository over `blogPosts`.
func NewBlogPostRepository(store DocumentStore) BlogPostRepository {
	return &blogPostRepository{store: store}
}

// Create stores the post with server-assigned timestamps and returns its ID.
func (r *blogPostRepository) Create(ctx context.Context, post *models.BlogPost) (string, error) {
	data := map[string]interface{}{
		"title":     post.Title,
		"slug":      post.Slug,
		"content":   post.Content,
		"excerpt":   post.Excerpt,
		"category":  post.Category,
		"published": post.Published,
		"createdAt": ServerTimestamp,
		"updatedAt": ServerTimestamp,
		"author":    post.Author,
		"tags":      append([]string{}, post.Tags...),
	}
	if post.CoverImage != "" {
		data["coverImage"] = post.CoverImage
	}
	id, err := r.store.Add(ctx, BlogPostsCollection, data)
	if err != nil {
		return "", fmt.Errorf("failed to create blog post: %w", err)
	}
	return id, nil
}

func (r *blogPostRepository) GetByID(ctx context.Context, postID string) (*models.BlogPost, error) {
	doc, err := r.store.Get(ctx, BlogPostsCollection, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blog post %s: %w", postID, err)
	}
	post := blogPostFromDocument(doc)
	return &post, nil
}

func (r *blogPostRepository) List(ctx context.Context, q Query) ([]models.BlogPost, error) {
	docs, err := r.store.Query(ctx, BlogPostsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	posts := make([]models.BlogPost, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, blogPostFromDocument(doc))
	}
	return posts, nil
}

// Update writes fields into an existing post and stamps updatedAt.
func (r *blogPostRepository) Update(ctx context.Context, postID string, fields map[string]interface{}) error {
	data := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["updatedAt"] = ServerTimestamp
	if err := r.store.Update(ctx, BlogPostsCollection, postID, data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update blog post %s: %w", postID, err)
	}
	return nil
}

func (r *blogPostRepository) Delete(ctx context.Context, postID string) error {
	if err := r.store.Delete(ctx, BlogPostsCollection, postID); err != nil {
		return fmt.Errorf("failed to delete blog post %s: %w", postID, err)
	}
	return nil
}

func blogPostFromDocument(doc *Document) models.BlogPost {
	return models.BlogPost{
		ID:         doc.ID,
		Title:      doc.String("title"),
		Slug:       doc.String("slug"),
		Content:    doc.String("content"),
		Excerpt:    doc.String("excerpt"),
		Category:   doc.String("category"),
		Published:  doc.Bool("published"),
		CreatedAt:  doc.Time("createdAt"),
		UpdatedAt:  doc.Time("updatedAt"),
		Author:     doc.String("author"),
		Tags:       doc.Strings("tags"),
		CoverImage: doc.String("coverImage"),
	}
}
