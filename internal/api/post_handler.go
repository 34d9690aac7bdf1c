package api

import (
	"net/http"
	"strconv"

	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PostHandler handles post and comment endpoints
type PostHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(services *service.Services, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		services: services,
		log:      log.With().Str("handler", "post").Logger(),
	}
}

// ListPosts handles GET /v1/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.services.Post.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreatePost handles POST /v1/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.services.Post.CreatePost(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost handles GET /v1/posts/:post_id
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.services.Post.GetPost(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// SubmitComment handles POST /v1/posts/:post_id/comments
// The comment is queued for the processor unless wait=true, in which case the
// automation runs inline and the completed post is returned.
func (h *PostHandler) SubmitComment(c *gin.Context) {
	postID := c.Param("post_id")

	wait := false
	if raw := c.Query("wait"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "wait must be a boolean"})
			return
		}
		wait = parsed
	}

	var draft models.CommentDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.services.Post.SubmitComment(c.Request.Context(), postID, &draft, wait)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("post_id", postID).
		Bool("wait", wait).
		Msg("Comment submitted")

	status := http.StatusAccepted
	if wait {
		status = http.StatusOK
	}
	c.JSON(status, post)
}
