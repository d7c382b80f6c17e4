package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/middleware"
	"github.com/FiveXSeven/synergies/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// AddCommentRequest represents a visitor comment submission.
type AddCommentRequest struct {
	AuthorName string `json:"authorName" validate:"required,max=100"`
	Content    string `json:"content" validate:"required,max=2000"`
}

// List godoc
// @Summary List a publication's comments
// @Tags comments
// @Produce json
// @Param id path string true "Publication ID"
// @Success 200 {array} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	comments, err := h.commentService.List(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// Add godoc
// @Summary Add a comment to a publication
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Publication ID"
// @Param request body AddCommentRequest true "Comment"
// @Success 201 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications/{id}/comments [post]
func (h *CommentHandler) Add(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req AddCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.Add(c.Request().Context(), id, req.AuthorName, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// Delete godoc
// @Summary Delete a comment (admin only)
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apierrors.ErrorResponse{
			Error: "authentication required",
		})
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.commentService.Delete(c.Request().Context(), id, ident.Role); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "comment deleted",
	})
}
