package gate

import "strings"

const (
	HomePath  = "/"
	LoginPath = "/login"
)

// Route names.
const (
	RouteHome     = "home"
	RouteLogin    = "login"
	RouteSignup   = "signup"
	RouteProfile  = "profile"
	RouteTasks    = "tasks"
	RouteBlog     = "blog"
	RouteBlogNew  = "blog-new"
	RouteBlogEdit = "blog-edit"
	RouteBlogPost = "blog-post"
	RouteInfo     = "info"
	RouteServices = "services"
	RouteNotFound = "not-found"
)

// Routes is the navigation table, most specific first. Patterns use ":name"
// for a single path segment.
var Routes = []Route{
	{Name: RouteHome, Pattern: "/", Access: Public},
	{Name: RouteLogin, Pattern: "/login", Access: Public},
	{Name: RouteSignup, Pattern: "/signup", Access: Public},
	{Name: RouteProfile, Pattern: "/profile", Access: Authenticated},
	{Name: RouteTasks, Pattern: "/tasks", Access: AdminOnly},
	{Name: RouteBlog, Pattern: "/blog", Access: Public},
	{Name: RouteBlogNew, Pattern: "/blog/new", Access: AdminOnly},
	{Name: RouteBlogEdit, Pattern: "/blog/:id/edit", Access: AdminOnly},
	{Name: RouteBlogPost, Pattern: "/blog/:slug", Access: Public},
	{Name: RouteInfo, Pattern: "/info", Access: Public},
	{Name: RouteServices, Pattern: "/services", Access: Public},
}

// NotFound is the catch-all route.
var NotFound = Route{Name: RouteNotFound, Pattern: "*", Access: Public}

// Match returns the route for path and its named parameters. Unknown paths
// match NotFound.
func Match(path string) (Route, map[string]string) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range Routes {
		if params, ok := matchPattern(r.Pattern, path); ok {
			return r, params
		}
	}
	return NotFound, map[string]string{}
}

// Lookup returns the route with the given name.
func Lookup(name string) (Route, bool) {
	for _, r := range Routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	params := map[string]string{}
	if pattern == path {
		return params, true
	}
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return nil, false
			}
			params[seg[1:]] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}
