package handler

import (
	"errors"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blogplatform-backend/internal/domains/post"
	"blogplatform-backend/internal/domains/post/service"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/internal/shared/middleware"
	"blogplatform-backend/internal/shared/response"
)

// maxCoverImageBytes caps cover uploads at 5 MB.
const maxCoverImageBytes = 5 << 20

// PostHandler translates HTTP requests into post service calls.
type PostHandler struct {
	service service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// ========================================
// LIFECYCLE ENDPOINTS
// ========================================

// Create handles POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req post.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dto, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/posts/"+dto.ID.String())
	response.Success(c, http.StatusCreated, dto)
}

// Get handles GET /posts/:id. Works for anonymous readers; authors and
// admins additionally see drafts.
func (h *PostHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}

	dto, err := h.service.Get(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// Update handles PUT /posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}

	var req post.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dto, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// Publish handles POST /posts/:id/publish
func (h *PostHandler) Publish(c *gin.Context) {
	h.setPublished(c, true)
}

// Unpublish handles POST /posts/:id/unpublish
func (h *PostHandler) Unpublish(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *PostHandler) setPublished(c *gin.Context, published bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}

	var dto *post.PostDTO
	if published {
		dto, err = h.service.Publish(c.Request.Context(), actor, id)
	} else {
		dto, err = h.service.Unpublish(c.Request.Context(), actor, id)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// Delete handles DELETE /posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// UploadCover handles POST /posts/:id/cover (multipart form, field "image")
func (h *PostHandler) UploadCover(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "missing image file")
		return
	}
	if fileHeader.Size > maxCoverImageBytes {
		response.BadRequest(c, "image exceeds 5MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "cannot read image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxCoverImageBytes))
	if err != nil {
		response.BadRequest(c, "cannot read image file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	dto, err := h.service.SetCoverImage(c.Request.Context(), actor, id, fileHeader.Filename, data, contentType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// ========================================
// LISTING ENDPOINTS
// ========================================

// ListPublished handles GET /posts (public feed)
func (h *PostHandler) ListPublished(c *gin.Context) {
	var req post.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid pagination parameters")
		return
	}

	resp, err := h.service.ListPublished(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ListMine handles GET /posts/me (author dashboard, drafts included)
func (h *PostHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req post.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid pagination parameters")
		return
	}

	resp, err := h.service.ListByAuthor(c.Request.Context(), actor, actor.ID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ListAll handles GET /admin/posts (admin panel view)
func (h *PostHandler) ListAll(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req post.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid pagination parameters")
		return
	}

	resp, err := h.service.ListAll(c.Request.Context(), actor, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========================================
// HELPERS
// ========================================

// actorFromContext returns nil for anonymous requests, so the service
// applies public visibility rules.
func actorFromContext(c *gin.Context) *shared.Actor {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return nil
	}
	return &actor
}

func (h *PostHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors

	switch {
	// 400 Bad Request - validation failure
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", validationErrs)

	// 403 Forbidden - authenticated but not the author or an admin
	case errors.Is(err, post.ErrForbidden):
		response.Forbidden(c, err.Error())

	// 404 Not Found - absent, or a draft hidden from this viewer
	case errors.Is(err, post.ErrPostNotFound):
		response.NotFound(c, err.Error())

	// 500 Internal Server Error
	default:
		response.InternalServerError(c, "Internal server error")
	}
}
