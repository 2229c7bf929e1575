package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/response"
)

type postService interface {
	List(ctx context.Context, query dto.ListPostsQuery, includeUnpublished bool) (*models.PostList, error)
	Get(ctx context.Context, id string, includeUnpublished bool) (*models.Post, error)
	Create(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error)
	Update(ctx context.Context, id string, req dto.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// PostHandler exposes the board endpoints.
type PostHandler struct {
	service postService
}

// NewPostHandler constructs the handler.
func NewPostHandler(svc postService) *PostHandler {
	return &PostHandler{service: svc}
}

// List godoc
// @Summary List posts
// @Description Published posts of a board; an admin session may add includeUnpublished=true
// @Tags Posts
// @Produce json
// @Param boardType query string false "NOTICE, BUDGET, RESOURCE or GALLERY"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Param search query string false "Substring of title or content"
// @Param year query int false "Budget year"
// @Param budgetType query string false "BUDGET or SETTLEMENT"
// @Param includeUnpublished query bool false "Admins only"
// @Success 200 {object} models.PostList
// @Failure 400 {object} response.ErrorBody
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	var query dto.ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	list, err := h.service.List(c.Request.Context(), query, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get godoc
// @Summary Get post
// @Description Returns a post with its attachments and counts the view
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.Get(c.Request.Context(), c.Param("id"), isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, post)
}

// Create godoc
// @Summary Create post
// @Tags Posts
// @Accept json
// @Produce json
// @Param payload body dto.CreatePostRequest true "Post payload"
// @Success 201 {object} models.Post
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}
	post, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Update godoc
// @Summary Update post
// @Description Overwrites the given fields and replaces the attachment list
// @Tags Posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body dto.UpdatePostRequest true "Post payload"
// @Success 200 {object} models.Post
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}
	post, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, post)
}

// Delete godoc
// @Summary Delete post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Success
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Success{Success: true})
}
