package db

import (
	"context"
	"errors"

	"github.com/example/portfolio/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Collection names in the remote store.
const (
	UsersCollection     = "users"
	TasksCollection     = "tasks"
	BlogPostsCollection = "blogPosts"
)

// DocumentStore is the document-database half of the remote data service.
// Values in document data are plain Go values (string, bool, numbers,
// time.Time, slices and maps); ServerTimestamp may be used in place of a time
// on writes.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set replaces the whole document, creating it if needed.
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Merge writes the given fields into the document, creating it if needed.
	// Fields not present in data are left untouched.
	Merge(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Add creates a document with a store-assigned ID.
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	// Update writes fields into an existing document; ErrNotFound if missing.
	Update(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]*Document, error)
	Close() error
}

// UserRepository reads and writes the companion `users` documents.
type UserRepository interface {
	// IsAdmin reads the companion document's isAdmin flag.
	IsAdmin(ctx context.Context, uid string) (bool, error)
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	// CreateCompanion writes a fresh companion document.
	CreateCompanion(ctx context.Context, uid string, profile models.UserProfile, isAdmin bool) error
	// SetProfile writes every profile field, leaving isAdmin untouched.
	SetProfile(ctx context.Context, uid string, profile models.UserProfile) error
	MergeProfile(ctx context.Context, uid string, patch models.ProfilePatch) error
}

// TaskRepository defines the interface for task storage operations.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) (string, error)
	GetByID(ctx context.Context, taskID string) (*models.Task, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]models.Task, error)
	Update(ctx context.Context, taskID string, fields map[string]interface{}) error
	Delete(ctx context.Context, taskID string) error
}

// BlogPostRepository defines the interface for blog post storage operations.
type BlogPostRepository interface {
	Create(ctx context.Context, post *models.BlogPost) (string, error)
	GetByID(ctx context.Context, postID string) (*models.BlogPost, error)
	List(ctx context.Context, q Query) ([]models.BlogPost, error)
	Update(ctx context.Context, postID string, fields map[string]interface{}) error
	Delete(ctx context.Context, postID string) error
}
