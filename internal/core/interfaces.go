package core

import (
	"context"

	"github.com/example/portfolio/internal/models"
)

// UserService resolves application users from auth provider identities.
type UserService interface {
	// Transform merges id with the isAdmin flag of its companion document.
	// It performs exactly one companion read and never fails: a read error
	// yields isAdmin=false. A nil identity yields nil.
	Transform(ctx context.Context, id *models.Identity) *models.User
	// CreateCompanion writes the companion document for a new account.
	CreateCompanion(ctx context.Context, id *models.Identity) error
}

// ProfileService defines profile operations on companion documents.
type ProfileService interface {
	// Fetch returns the stored profile, writing and returning a default one
	// when the document does not exist yet.
	Fetch(ctx context.Context, userID string) (*models.UserProfile, error)
	// Update merges the patch into the stored profile.
	Update(ctx context.Context, userID string, patch models.ProfilePatch) error
}

// TaskService defines task operations.
type TaskService interface {
	GetTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	CreateTask(ctx context.Context, userID string, input models.TaskInput) (*models.Task, error)
	// UpdateTask, ToggleTaskComplete and DeleteTask only touch tasks created
	// by userID; any other task is reported as not found.
	UpdateTask(ctx context.Context, userID, taskID string, input models.TaskInput) error
	// ToggleTaskComplete stores the negation of completed.
	ToggleTaskComplete(ctx context.Context, userID, taskID string, completed bool) error
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// BlogService defines blog post operations.
type BlogService interface {
	ListAll(ctx context.Context) ([]models.BlogPost, error)
	ListPublished(ctx context.Context) ([]models.BlogPost, error)
	ListRecent(ctx context.Context, count int) ([]models.BlogPost, error)
	ListByTag(ctx context.Context, tag string) ([]models.BlogPost, error)
	GetByID(ctx context.Context, postID string) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Create(ctx context.Context, authorID string, input models.BlogPostInput) (*models.BlogPost, error)
	// Update writes the patch, re-deriving the slug when a title is present.
	Update(ctx context.Context, postID string, patch models.BlogPostPatch) error
	Delete(ctx context.Context, postID string) error
}
