// Package gate decides whether a navigation renders, waits or redirects,
// from the auth slice alone.
package gate

import (
	"net/url"
	"strings"

	"github.com/example/portfolio/internal/state"
)

// Access is the protection level of a route.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

// Route is one named navigation target.
type Route struct {
	Name    string
	Pattern string
	Access  Access
}

// Outcome is what the view layer should do with a navigation.
type Outcome int

const (
	Render Outcome = iota
	Loading
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the gate's verdict. Location is set for redirects; From is
// the originating path a login redirect should return to.
type Decision struct {
	Outcome  Outcome
	Location string
	From     string
}

// AuthView is the part of the auth slice the gate reads.
type AuthView struct {
	Initialized     bool
	IsAuthenticated bool
	IsAdmin         bool
}

// ViewOf derives the gate's inputs from the auth slice.
func ViewOf(auth state.AuthState) AuthView {
	return AuthView{
		Initialized:     auth.Initialized,
		IsAuthenticated: auth.CurrentUser != nil,
		IsAdmin:         auth.CurrentUser != nil && auth.CurrentUser.IsAdmin,
	}
}

// Evaluate decides how to handle a navigation to path on route. It never
// redirects before auth is initialized.
func Evaluate(view AuthView, route Route, path string) Decision {
	if route.Access == Public {
		return Decision{Outcome: Render}
	}
	if !view.Initialized {
		return Decision{Outcome: Loading}
	}
	if !view.IsAuthenticated {
		return Decision{Outcome: Redirect, Location: LoginLocation(path), From: path}
	}
	if route.Access == AdminOnly && !view.IsAdmin {
		return Decision{Outcome: Redirect, Location: HomePath}
	}
	return Decision{Outcome: Render}
}

// LoginLocation is the login URL that returns to from after signing in.
func LoginLocation(from string) string {
	if from == "" || from == LoginPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"from": {from}}.Encode()
}

// SafeReturnPath validates a post-login return path. Only local absolute
// paths are accepted; anything else yields HomePath.
func SafeReturnPath(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return HomePath
	}
	return from
}
