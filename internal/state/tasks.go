package state

import (
	"context"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/models"
)

var errNotSignedIn = apperror.New(apperror.KindCredential, "", "You must be signed in", nil)

// tasksRequest runs call with the tasks slice's pending/settled bookkeeping.
// Successful writes are applied to the local list; nothing is re-fetched.
func tasksRequest(s *Store, fallback string, call func() (func(*TasksState), error)) error {
	s.commit(func(st *State) {
		st.Tasks.Loading = true
		setError(&st.Tasks.Error, &st.Tasks.ErrorKind, nil)
	})

	apply, err := call()
	if err != nil {
		appErr := apperror.Wrap(err, fallback)
		s.commit(func(st *State) {
			st.Tasks.Loading = false
			setError(&st.Tasks.Error, &st.Tasks.ErrorKind, appErr)
		})
		return appErr
	}
	s.commit(func(st *State) {
		apply(&st.Tasks)
		st.Tasks.Loading = false
	})
	return nil
}

// LoadTasks fetches the signed-in user's tasks, newest first.
type LoadTasks struct{}

func (LoadTasks) Type() string { return "tasks/load" }

func (LoadTasks) run(ctx context.Context, s *Store) error {
	uid := s.currentUID()
	return tasksRequest(s, "Failed to fetch tasks", func() (func(*TasksState), error) {
		if uid == "" {
			return nil, errNotSignedIn
		}
		tasks, err := s.services.Tasks.GetTasks(ctx, uid)
		if err != nil {
			return nil, err
		}
		return func(t *TasksState) { t.Tasks = tasks }, nil
	})
}

// CreateTask stores a task for the signed-in user and prepends it.
type CreateTask struct {
	Input models.TaskInput
}

func (CreateTask) Type() string { return "tasks/create" }

func (a CreateTask) run(ctx context.Context, s *Store) error {
	uid := s.currentUID()
	return tasksRequest(s, "Failed to create task", func() (func(*TasksState), error) {
		if uid == "" {
			return nil, errNotSignedIn
		}
		task, err := s.services.Tasks.CreateTask(ctx, uid, a.Input)
		if err != nil {
			return nil, err
		}
		return func(t *TasksState) {
			t.Tasks = append([]models.Task{*task}, t.Tasks...)
		}, nil
	})
}

// UpdateTask rewrites the title and description of one of the signed-in
// user's tasks in place.
type UpdateTask struct {
	ID    string
	Input models.TaskInput
}

func (UpdateTask) Type() string { return "tasks/update" }

func (a UpdateTask) run(ctx context.Context, s *Store) error {
	uid := s.currentUID()
	return tasksRequest(s, "Failed to update task", func() (func(*TasksState), error) {
		if uid == "" {
			return nil, errNotSignedIn
		}
		if err := s.services.Tasks.UpdateTask(ctx, uid, a.ID, a.Input); err != nil {
			return nil, err
		}
		now := s.now()
		return func(t *TasksState) {
			for i := range t.Tasks {
				if t.Tasks[i].ID == a.ID {
					t.Tasks[i].Title = a.Input.Title
					t.Tasks[i].Description = a.Input.Description
					t.Tasks[i].UpdatedAt = now
				}
			}
		}, nil
	})
}

// ToggleTask flips a listed task's completion.
type ToggleTask struct {
	ID string
}

func (ToggleTask) Type() string { return "tasks/toggle" }

func (a ToggleTask) run(ctx context.Context, s *Store) error {
	var (
		completed bool
		found     bool
	)
	s.read(func(st *State) {
		for _, t := range st.Tasks.Tasks {
			if t.ID == a.ID {
				completed, found = t.Completed, true
				break
			}
		}
	})
	uid := s.currentUID()
	return tasksRequest(s, "Failed to toggle task", func() (func(*TasksState), error) {
		if uid == "" {
			return nil, errNotSignedIn
		}
		if !found {
			return nil, apperror.NotFound("Task not found")
		}
		if err := s.services.Tasks.ToggleTaskComplete(ctx, uid, a.ID, completed); err != nil {
			return nil, err
		}
		now := s.now()
		return func(t *TasksState) {
			for i := range t.Tasks {
				if t.Tasks[i].ID == a.ID {
					t.Tasks[i].Completed = !completed
					t.Tasks[i].UpdatedAt = now
				}
			}
		}, nil
	})
}

// DeleteTask removes one of the signed-in user's tasks.
type DeleteTask struct {
	ID string
}

func (DeleteTask) Type() string { return "tasks/delete" }

func (a DeleteTask) run(ctx context.Context, s *Store) error {
	uid := s.currentUID()
	return tasksRequest(s, "Failed to delete task", func() (func(*TasksState), error) {
		if uid == "" {
			return nil, errNotSignedIn
		}
		if err := s.services.Tasks.DeleteTask(ctx, uid, a.ID); err != nil {
			return nil, err
		}
		return func(t *TasksState) {
			kept := make([]models.Task, 0, len(t.Tasks))
			for _, task := range t.Tasks {
				if task.ID != a.ID {
					kept = append(kept, task)
				}
			}
			t.Tasks = kept
		}, nil
	})
}

// SetTaskFilter changes which tasks Visible returns.
type SetTaskFilter struct {
	Filter models.TaskFilter
}

func (SetTaskFilter) Type() string { return "tasks/setFilter" }

func (a SetTaskFilter) run(_ context.Context, s *Store) error {
	filter, err := models.ParseTaskFilter(string(a.Filter))
	if err != nil {
		return apperror.Validation(err.Error(), err)
	}
	s.commit(func(st *State) { st.Tasks.Filter = filter })
	return nil
}
