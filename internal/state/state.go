package state

import (
	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/models"
)

// State is the whole state tree of one session.
type State struct {
	Auth    AuthState    `json:"auth"`
	Profile ProfileState `json:"userProfile"`
	Blog    BlogState    `json:"blog"`
	Theme   ThemeState   `json:"theme"`
	Tasks   TasksState   `json:"tasks"`
}

// AuthState is the auth slice. Initialized turns true once per session;
// afterwards a nil CurrentUser means signed out rather than still loading.
type AuthState struct {
	CurrentUser *models.User  `json:"currentUser"`
	Loading     bool          `json:"loading"`
	Error       string        `json:"error,omitempty"`
	ErrorKind   apperror.Kind `json:"errorKind,omitempty"`
	Initialized bool          `json:"initialized"`
}

// ProfileState is the userProfile slice.
type ProfileState struct {
	Profile   *models.UserProfile `json:"profile"`
	Loading   bool                `json:"loading"`
	Error     string              `json:"error,omitempty"`
	ErrorKind apperror.Kind       `json:"errorKind,omitempty"`
}

// BlogState is the blog slice.
type BlogState struct {
	Posts       []models.BlogPost `json:"posts"`
	CurrentPost *models.BlogPost  `json:"currentPost"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
	ErrorKind   apperror.Kind     `json:"errorKind,omitempty"`
}

// ThemeState is the theme slice.
type ThemeState struct {
	Mode models.ThemeMode `json:"mode"`
}

// TasksState is the tasks slice.
type TasksState struct {
	Tasks     []models.Task     `json:"tasks"`
	Filter    models.TaskFilter `json:"filter"`
	Loading   bool              `json:"loading"`
	Error     string            `json:"error,omitempty"`
	ErrorKind apperror.Kind     `json:"errorKind,omitempty"`
}

// Visible returns the tasks the current filter selects.
func (t TasksState) Visible() []models.Task {
	return models.FilterTasks(t.Tasks, t.Filter)
}

func initialState(theme models.ThemeMode) State {
	return State{
		Blog:  BlogState{Posts: []models.BlogPost{}},
		Theme: ThemeState{Mode: theme},
		Tasks: TasksState{Tasks: []models.Task{}, Filter: models.TaskFilterAll},
	}
}

func (s State) clone() State {
	out := s
	if s.Auth.CurrentUser != nil {
		u := *s.Auth.CurrentUser
		out.Auth.CurrentUser = &u
	}
	if s.Profile.Profile != nil {
		p := s.Profile.Profile.Clone()
		out.Profile.Profile = &p
	}
	out.Blog.Posts = make([]models.BlogPost, len(s.Blog.Posts))
	for i, p := range s.Blog.Posts {
		out.Blog.Posts[i] = p.Clone()
	}
	if s.Blog.CurrentPost != nil {
		p := s.Blog.CurrentPost.Clone()
		out.Blog.CurrentPost = &p
	}
	out.Tasks.Tasks = append([]models.Task{}, s.Tasks.Tasks...)
	return out
}

// setError stores the normalized message and kind of err.
func setError(msg *string, kind *apperror.Kind, err *apperror.Error) {
	if err == nil {
		*msg = ""
		*kind = ""
		return
	}
	*msg = err.Message
	*kind = err.Kind
}
