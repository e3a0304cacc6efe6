package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/state"
)

// BlogHandler serves blog posts.
type BlogHandler struct{}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler() *BlogHandler {
	return &BlogHandler{}
}

// List handles GET /api/blog. Query parameters select the listing:
//
//	?slug=s          the post with slug s, into currentPost
//	?recent=n        the n newest published posts
//	?published=true  published posts, optionally narrowed by ?tag=
//	(none)           every post
func (h *BlogHandler) List(c *gin.Context) {
	var action state.Action = state.FetchBlogPosts{}
	switch {
	case c.Query("slug") != "":
		action = state.FetchPostBySlug{Slug: c.Query("slug")}
	case c.Query("recent") != "":
		n, err := strconv.Atoi(c.Query("recent"))
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "recent must be a non-negative integer"})
			return
		}
		action = state.FetchRecentPosts{Count: n}
	case c.Query("published") == "true" || c.Query("tag") != "":
		action = state.FetchPublishedPosts{Tag: c.Query("tag")}
	}

	sess, err := dispatch(c, action)
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusOK)
}

// Get handles GET /api/blog/:id.
func (h *BlogHandler) Get(c *gin.Context) {
	sess, err := dispatch(c, state.FetchBlogPostByID{ID: c.Param("id")})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusOK)
}

// Create handles POST /api/blog.
func (h *BlogHandler) Create(c *gin.Context) {
	var input models.BlogPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := dispatch(c, state.CreateBlogPost{Input: input})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusCreated)
}

// Update handles PUT /api/blog/:id.
func (h *BlogHandler) Update(c *gin.Context) {
	var patch models.BlogPostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := dispatch(c, state.UpdateBlogPost{ID: c.Param("id"), Patch: patch})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusOK)
}

// Delete handles DELETE /api/blog/:id.
func (h *BlogHandler) Delete(c *gin.Context) {
	sess, err := dispatch(c, state.DeleteBlogPost{ID: c.Param("id")})
	if sess == nil {
		return
	}
	h.respond(c, sess, err, http.StatusOK)
}

func (h *BlogHandler) respond(c *gin.Context, sess *session.Session, err error, okStatus int) {
	status := statusFor(err)
	if err == nil {
		status = okStatus
	}
	c.JSON(status, sess.Store.Snapshot().Blog)
}
