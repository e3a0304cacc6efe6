package state

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/core"
	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/identity"
	"github.com/example/portfolio/internal/models"
)

// countingUsers counts Transform calls, each of which is one companion read.
type countingUsers struct {
	core.UserService
	transforms atomic.Int32
}

func (c *countingUsers) Transform(ctx context.Context, id *models.Identity) *models.User {
	c.transforms.Add(1)
	return c.UserService.Transform(ctx, id)
}

// flakyBlog fails Delete and Update when fail is set.
type flakyBlog struct {
	core.BlogService
	fail bool
}

func (f *flakyBlog) Delete(ctx context.Context, id string) error {
	if f.fail {
		return errors.New("backend unavailable")
	}
	return f.BlogService.Delete(ctx, id)
}

func (f *flakyBlog) Update(ctx context.Context, id string, patch models.BlogPostPatch) error {
	if f.fail {
		return errors.New("backend unavailable")
	}
	return f.BlogService.Update(ctx, id, patch)
}

type harness struct {
	store   *Store
	session *identity.Session
	users   *countingUsers
	blog    *flakyBlog
	docs    *db.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessOn(t, db.NewMemoryStore())
}

// newHarnessOn builds a second browser over the same backend documents.
func newHarnessOn(t *testing.T, docs *db.MemoryStore) *harness {
	t.Helper()
	logger := zap.NewNop()

	local, err := identity.NewLocalAuthenticator(docs, "state-test-secret-0123")
	require.NoError(t, err)
	session := identity.NewSession(local.WithCost(bcrypt.MinCost), logger)

	userRepo := db.NewUserRepository(docs)
	users := &countingUsers{UserService: core.NewUserService(userRepo, logger)}
	blog := &flakyBlog{BlogService: core.NewBlogService(db.NewBlogPostRepository(docs), logger)}

	store := NewStore(Services{
		Auth:     session,
		Users:    users,
		Profiles: core.NewProfileService(userRepo, logger),
		Blog:     blog,
		Tasks:    core.NewTaskService(db.NewTaskRepository(docs), logger),
	}, models.ThemeSystem, logger)

	return &harness{store: store, session: session, users: users, blog: blog, docs: docs}
}

func (h *harness) signUp(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, h.store.Dispatch(context.Background(), SignUp{
		Credentials: models.Credentials{Email: email, Password: "secret1"},
	}))
}

func TestSignIn_ValidCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "ada@example.com")
	require.NoError(t, h.store.Dispatch(ctx, SignOut{}))
	assert.Nil(t, h.store.Snapshot().Auth.CurrentUser)

	err := h.store.Dispatch(ctx, SignIn{Credentials: models.Credentials{Email: "ada@example.com", Password: "secret1"}})
	require.NoError(t, err)

	auth := h.store.Snapshot().Auth
	require.NotNil(t, auth.CurrentUser)
	assert.Equal(t, "ada@example.com", auth.CurrentUser.Email)
	assert.False(t, auth.CurrentUser.IsAdmin)
	assert.Empty(t, auth.Error)
	assert.False(t, auth.Loading)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "ada@example.com")
	require.NoError(t, h.store.Dispatch(ctx, SignOut{}))

	allowed := []string{
		"Invalid email or password.",
		"Too many failed attempts. Please try again later.",
		"No account found with this email.",
		apperror.DefaultSignInMessage,
	}

	for _, creds := range []models.Credentials{
		{Email: "ada@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		err := h.store.Dispatch(ctx, SignIn{Credentials: creds})
		require.Error(t, err)

		auth := h.store.Snapshot().Auth
		assert.Nil(t, auth.CurrentUser)
		assert.False(t, auth.Loading)
		assert.Contains(t, allowed, auth.Error)
		assert.Equal(t, apperror.KindCredential, auth.ErrorKind)
	}
	assert.Equal(t, "No account found with this email.", h.store.Snapshot().Auth.Error)
}

func TestSignUp_WritesCompanion(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ada@example.com")

	user := h.store.Snapshot().Auth.CurrentUser
	require.NotNil(t, user)
	doc, err := h.docs.Get(context.Background(), db.UsersCollection, user.UID)
	require.NoError(t, err)
	assert.False(t, doc.Bool("isAdmin"))

	err = h.store.Dispatch(context.Background(), SignUp{
		Credentials: models.Credentials{Email: "ada@example.com", Password: "secret1"},
	})
	require.Error(t, err)
	assert.Equal(t, "An account with this email already exists.", h.store.Snapshot().Auth.Error)
}

func TestLifecycle_EnsureStartedIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.session.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, h.store.Snapshot().Auth.Initialized)

	l := NewLifecycle(h.store)
	l.EnsureStarted(ctx)
	l.EnsureStarted(ctx)
	assert.ErrorIs(t, l.Start(ctx), ErrAlreadyStarted)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, l.Wait(waitCtx))

	auth := h.store.Snapshot().Auth
	assert.True(t, auth.Initialized)
	require.NotNil(t, auth.CurrentUser)
	assert.Equal(t, "ada@example.com", auth.CurrentUser.Email)
	assert.EqualValues(t, 1, h.users.transforms.Load())

	// The subscription is gone: later provider events cause no reads.
	_, err = h.session.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, h.users.transforms.Load())
}

func TestLifecycle_SignedOutStillInitializes(t *testing.T) {
	h := newHarness(t)
	l := NewLifecycle(h.store)
	l.EnsureStarted(context.Background())

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("lifecycle did not initialize")
	}
	auth := h.store.Snapshot().Auth
	assert.True(t, auth.Initialized)
	assert.Nil(t, auth.CurrentUser)
}

func TestToggleTheme_Sequence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.Equal(t, models.ThemeSystem, h.store.Snapshot().Theme.Mode)

	for _, want := range []models.ThemeMode{models.ThemeLight, models.ThemeDark, models.ThemeLight, models.ThemeDark} {
		require.NoError(t, h.store.Dispatch(ctx, ToggleTheme{}))
		assert.Equal(t, want, h.store.Snapshot().Theme.Mode)
	}

	require.NoError(t, h.store.Dispatch(ctx, SetTheme{Mode: models.ThemeSystem}))
	assert.Equal(t, models.ThemeSystem, h.store.Snapshot().Theme.Mode)

	err := h.store.Dispatch(ctx, SetTheme{Mode: "sepia"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, models.ThemeSystem, h.store.Snapshot().Theme.Mode)
}

func TestTasks_FilterScenario(t *testing.T) {
	tasks := TasksState{Tasks: []models.Task{
		{ID: "done", Completed: true},
		{ID: "open", Completed: false},
	}}

	tasks.Filter = models.TaskFilterActive
	assert.Equal(t, []models.Task{{ID: "open"}}, tasks.Visible())

	tasks.Filter = models.TaskFilterCompleted
	assert.Equal(t, []models.Task{{ID: "done", Completed: true}}, tasks.Visible())

	tasks.Filter = models.TaskFilterAll
	assert.Equal(t, tasks.Tasks, tasks.Visible())
}

func TestTasks_OptimisticMutations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.store.Dispatch(ctx, LoadTasks{})
	assert.Equal(t, apperror.KindCredential, apperror.KindOf(err))

	h.signUp(t, "ada@example.com")
	require.NoError(t, h.store.Dispatch(ctx, CreateTask{Input: models.TaskInput{Title: "first"}}))
	require.NoError(t, h.store.Dispatch(ctx, CreateTask{Input: models.TaskInput{Title: "second"}}))

	tasks := h.store.Snapshot().Tasks.Tasks
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title, "new tasks are prepended")

	require.NoError(t, h.store.Dispatch(ctx, ToggleTask{ID: tasks[1].ID}))
	require.NoError(t, h.store.Dispatch(ctx, UpdateTask{ID: tasks[0].ID, Input: models.TaskInput{Title: "renamed"}}))
	require.NoError(t, h.store.Dispatch(ctx, SetTaskFilter{Filter: models.TaskFilterCompleted}))

	st := h.store.Snapshot().Tasks
	assert.Equal(t, "renamed", st.Tasks[0].Title)
	require.Len(t, st.Visible(), 1)
	assert.Equal(t, "first", st.Visible()[0].Title)

	require.NoError(t, h.store.Dispatch(ctx, LoadTasks{}))
	reloaded := h.store.Snapshot().Tasks.Tasks
	assert.Len(t, reloaded, 2)

	require.NoError(t, h.store.Dispatch(ctx, DeleteTask{ID: tasks[0].ID}))
	assert.Len(t, h.store.Snapshot().Tasks.Tasks, 1)

	err = h.store.Dispatch(ctx, ToggleTask{ID: "missing"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "Task not found", h.store.Snapshot().Tasks.Error)
}

func TestTasks_OtherUsersTasksAreUntouchable(t *testing.T) {
	ctx := context.Background()
	owner := newHarness(t)
	owner.signUp(t, "ada@example.com")
	require.NoError(t, owner.store.Dispatch(ctx, CreateTask{Input: models.TaskInput{Title: "mine"}}))
	task := owner.store.Snapshot().Tasks.Tasks[0]

	intruder := newHarnessOn(t, owner.docs)
	intruder.signUp(t, "eve@example.com")
	intruder.store.commit(func(st *State) { st.Tasks.Tasks = []models.Task{task} })

	err := intruder.store.Dispatch(ctx, UpdateTask{ID: task.ID, Input: models.TaskInput{Title: "pwned"}})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	err = intruder.store.Dispatch(ctx, ToggleTask{ID: task.ID})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	err = intruder.store.Dispatch(ctx, DeleteTask{ID: task.ID})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	local := intruder.store.Snapshot().Tasks
	require.Len(t, local.Tasks, 1, "failed writes leave the local list alone")
	assert.Equal(t, "mine", local.Tasks[0].Title)
	assert.Equal(t, "Task not found", local.Error)

	require.NoError(t, owner.store.Dispatch(ctx, LoadTasks{}))
	stored := owner.store.Snapshot().Tasks.Tasks
	require.Len(t, stored, 1)
	assert.Equal(t, "mine", stored[0].Title)
	assert.False(t, stored[0].Completed)
}

func TestTasks_WritesRequireSignIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.store.Dispatch(ctx, DeleteTask{ID: "any"})
	assert.Equal(t, apperror.KindCredential, apperror.KindOf(err))
	err = h.store.Dispatch(ctx, UpdateTask{ID: "any", Input: models.TaskInput{Title: "x"}})
	assert.Equal(t, apperror.KindCredential, apperror.KindOf(err))
}

func TestBlog_UpdatingUnloadedPostKeepsCurrentPost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "ada@example.com")

	require.NoError(t, h.store.Dispatch(ctx, CreateBlogPost{Input: models.BlogPostInput{Title: "Viewed", Content: "body"}}))
	require.NoError(t, h.store.Dispatch(ctx, CreateBlogPost{Input: models.BlogPostInput{Title: "Other", Content: "other body"}}))
	posts := h.store.Snapshot().Blog.Posts
	viewed, other := posts[1], posts[0]

	require.NoError(t, h.store.Dispatch(ctx, FetchPostBySlug{Slug: viewed.Slug}))
	require.NoError(t, h.store.Dispatch(ctx, FetchPublishedPosts{}))
	require.Empty(t, h.store.Snapshot().Blog.Posts)

	title := "Renamed"
	require.NoError(t, h.store.Dispatch(ctx, UpdateBlogPost{ID: other.ID, Patch: models.BlogPostPatch{Title: &title}}))

	blog := h.store.Snapshot().Blog
	require.NotNil(t, blog.CurrentPost)
	assert.Equal(t, viewed.ID, blog.CurrentPost.ID)
	assert.Equal(t, "Viewed", blog.CurrentPost.Title)
	assert.Equal(t, "body", blog.CurrentPost.Content)
	assert.Empty(t, blog.Posts)

	content := "new body"
	require.NoError(t, h.store.Dispatch(ctx, UpdateBlogPost{ID: viewed.ID, Patch: models.BlogPostPatch{Content: &content}}))
	blog = h.store.Snapshot().Blog
	require.NotNil(t, blog.CurrentPost)
	assert.Equal(t, "Viewed", blog.CurrentPost.Title)
	assert.Equal(t, "new body", blog.CurrentPost.Content)
	assert.Equal(t, viewed.Author, blog.CurrentPost.Author)
}

func TestProfile_MergeScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := db.NewUserRepository(h.docs)

	s1 := models.Skill{ID: "1", Name: "Go", Level: models.SkillAdvanced}
	existing := models.DefaultProfile()
	existing.Bio = "a"
	existing.Skills = []models.Skill{s1}
	require.NoError(t, repo.SetProfile(ctx, "u1", existing))

	require.NoError(t, h.store.Dispatch(ctx, FetchUserProfile{UserID: "u1"}))
	bio := "b"
	require.NoError(t, h.store.Dispatch(ctx, UpdateUserProfile{UserID: "u1", Patch: models.ProfilePatch{Bio: &bio}}))

	local := h.store.Snapshot().Profile.Profile
	require.NotNil(t, local)
	assert.Equal(t, "b", local.Bio)
	assert.Equal(t, []models.Skill{s1}, local.Skills)

	stored, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "b", stored.Bio)
	assert.Equal(t, []models.Skill{s1}, stored.Skills)

	require.NoError(t, h.store.Dispatch(ctx, ResetProfile{}))
	assert.Nil(t, h.store.Snapshot().Profile.Profile)
}

func TestBlog_FailureLeavesPostsUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, "ada@example.com")

	require.NoError(t, h.store.Dispatch(ctx, CreateBlogPost{Input: models.BlogPostInput{Title: "One", Published: true}}))
	require.NoError(t, h.store.Dispatch(ctx, CreateBlogPost{Input: models.BlogPostInput{Title: "Two"}}))
	before := h.store.Snapshot().Blog.Posts
	require.Len(t, before, 2)
	assert.Equal(t, "two", before[0].Slug)

	h.blog.fail = true
	require.Error(t, h.store.Dispatch(ctx, DeleteBlogPost{ID: before[0].ID}))
	title := "Changed"
	require.Error(t, h.store.Dispatch(ctx, UpdateBlogPost{ID: before[1].ID, Patch: models.BlogPostPatch{Title: &title}}))

	blog := h.store.Snapshot().Blog
	assert.Equal(t, before, blog.Posts)
	assert.Equal(t, "backend unavailable", blog.Error)
	assert.Equal(t, apperror.KindUnknown, blog.ErrorKind)
	assert.False(t, blog.Loading)

	h.blog.fail = false
	require.NoError(t, h.store.Dispatch(ctx, UpdateBlogPost{ID: before[1].ID, Patch: models.BlogPostPatch{Title: &title}}))
	blog = h.store.Snapshot().Blog
	assert.Equal(t, "changed", blog.Posts[1].Slug)
	require.NotNil(t, blog.CurrentPost)
	assert.Equal(t, "Changed", blog.CurrentPost.Title)
	assert.Empty(t, blog.Error)

	require.NoError(t, h.store.Dispatch(ctx, DeleteBlogPost{ID: before[1].ID}))
	blog = h.store.Snapshot().Blog
	assert.Len(t, blog.Posts, 1)
	assert.Nil(t, blog.CurrentPost)

	require.NoError(t, h.store.Dispatch(ctx, FetchPublishedPosts{}))
	assert.Empty(t, h.store.Snapshot().Blog.Posts, "only the draft is left")

	err := h.store.Dispatch(ctx, FetchPostBySlug{Slug: "nope"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "Post not found", h.store.Snapshot().Blog.Error)
}

func TestStore_SubscribeAndSnapshotIsolation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var seen []models.ThemeMode
	unsubscribe := h.store.Subscribe(func(st State) { seen = append(seen, st.Theme.Mode) })

	require.NoError(t, h.store.Dispatch(ctx, ToggleTheme{}))
	unsubscribe()
	require.NoError(t, h.store.Dispatch(ctx, ToggleTheme{}))
	assert.Equal(t, []models.ThemeMode{models.ThemeLight}, seen)

	snap := h.store.Snapshot()
	snap.Tasks.Tasks = append(snap.Tasks.Tasks, models.Task{ID: "x"})
	assert.Empty(t, h.store.Snapshot().Tasks.Tasks)
}
