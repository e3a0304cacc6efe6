package api

import (
	"github.com/example/portfolio/internal/middleware"
	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/state"
)

// ErrorResponse is the body of a request rejected before reaching a slice.
type ErrorResponse = middleware.ErrorResponse

// TasksResponse is the tasks slice with the filtered list the view renders.
type TasksResponse struct {
	state.TasksState
	Visible []models.Task `json:"visible"`
}

// ThemeRequest is the body of PUT /api/theme.
type ThemeRequest struct {
	Mode models.ThemeMode `json:"mode" binding:"required"`
}

// ThemeResponse is the theme slice plus what the manager applied.
type ThemeResponse struct {
	Mode          models.ThemeMode `json:"mode"`
	Dark          bool             `json:"dark"`
	DocumentClass string           `json:"documentClass"`
}

// PageResponse describes a navigation after the gate has decided it.
type PageResponse struct {
	Route         string            `json:"route"`
	Params        map[string]string `json:"params,omitempty"`
	Outcome       string            `json:"outcome"`
	Location      string            `json:"location,omitempty"`
	DocumentClass string            `json:"documentClass"`
	Auth          state.AuthState   `json:"auth"`
}
