package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/state"
)

// TaskHandler serves the signed-in user's tasks. Every write is scoped to
// tasks the user created; anyone else's task id answers 404.
type TaskHandler struct{}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler() *TaskHandler {
	return &TaskHandler{}
}

// List handles GET /api/tasks. An optional ?filter= of all, active or
// completed replaces the slice's filter before the list is reloaded.
func (h *TaskHandler) List(c *gin.Context) {
	sess := mustSession(c)
	if sess == nil {
		return
	}
	ctx := c.Request.Context()
	// The filter is applied first so an invalid one leaves the list alone.
	if filter, ok := c.GetQuery("filter"); ok {
		if err := sess.Store.Dispatch(ctx, state.SetTaskFilter{Filter: models.TaskFilter(filter)}); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid filter", Details: err.Error()})
			return
		}
	}
	err := sess.Store.Dispatch(ctx, state.LoadTasks{})
	h.respond(c, sess, err, http.StatusOK)
}

// Create handles POST /api/tasks.
// Body: {"title": "...", "description": "..."}
// Responds 201 with the slice; the new task is first in the list.
func (h *TaskHandler) Create(c *gin.Context) {
	var input models.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := dispatch(c, state.CreateTask{Input: input})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusCreated)
}

// Update handles PUT /api/tasks/:id with the same body as Create.
func (h *TaskHandler) Update(c *gin.Context) {
	var input models.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := dispatch(c, state.UpdateTask{ID: c.Param("id"), Input: input})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusOK)
}

// Toggle handles POST /api/tasks/:id/toggle. The task must be in the list
// this session last loaded.
func (h *TaskHandler) Toggle(c *gin.Context) {
	sess, err := dispatch(c, state.ToggleTask{ID: c.Param("id")})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusOK)
}

// Delete handles DELETE /api/tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	sess, err := dispatch(c, state.DeleteTask{ID: c.Param("id")})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusOK)
}

// respond writes the tasks slice and its visible list. okStatus replaces 200
// on success.
func (h *TaskHandler) respond(c *gin.Context, sess *session.Session, err error, okStatus int) {
	tasks := sess.Store.Snapshot().Tasks
	status := statusFor(err)
	if err == nil {
		status = okStatus
	}
	c.JSON(status, TasksResponse{TasksState: tasks, Visible: tasks.Visible()})
}
