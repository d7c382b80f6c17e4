package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/middleware"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/repository"
	"github.com/FiveXSeven/synergies/internal/service"
	"github.com/FiveXSeven/synergies/internal/upload"
)

// PublicationHandler handles publication endpoints.
type PublicationHandler struct {
	pubService service.PublicationService
	uploads    *upload.Validator
}

// NewPublicationHandler creates a new publication handler.
func NewPublicationHandler(pubService service.PublicationService, uploads *upload.Validator) *PublicationHandler {
	return &PublicationHandler{pubService: pubService, uploads: uploads}
}

// ListResponse represents a paginated publication listing.
type ListResponse struct {
	Data       []model.Publication `json:"data"`
	Pagination service.Pagination  `json:"pagination"`
}

// photosField is the multipart field carrying image attachments.
const photosField = "photos"

// List godoc
// @Summary List publications
// @Tags publications
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Param type query string false "Publication type (publi or agro)"
// @Param search query string false "Substring match over title, description, location, display name"
// @Param userId query string false "Owner filter"
// @Success 200 {object} ListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications [get]
func (h *PublicationHandler) List(c echo.Context) error {
	filter := repository.ListFilter{
		Page:   atoiDefault(c.QueryParam("page"), 1),
		Limit:  atoiDefault(c.QueryParam("limit"), 0),
		Search: c.QueryParam("search"),
	}

	if t := c.QueryParam("type"); t != "" {
		pt := model.PublicationType(t)
		if !pt.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
				Error: "unknown publication type",
			})
		}
		filter.Type = pt
	}
	if raw := c.QueryParam("userId"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
				Error: "invalid userId",
			})
		}
		filter.UserID = ownerID
	}

	pubs, pagination, err := h.pubService.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, ListResponse{Data: pubs, Pagination: pagination})
}

// Get godoc
// @Summary Get a single publication
// @Tags publications
// @Produce json
// @Param id path string true "Publication ID"
// @Success 200 {object} model.Publication
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications/{id} [get]
func (h *PublicationHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	pub, err := h.pubService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pub)
}

// CreatePublicationRequest represents the form fields of a new publication.
type CreatePublicationRequest struct {
	Title           string `form:"title" validate:"required"`
	Description     string `form:"description" validate:"required"`
	Type            string `form:"type" validate:"required,oneof=publi agro"`
	Content         string `form:"content"`
	Location        string `form:"location"`
	EventDate       string `form:"eventDate"`
	UserDisplayName string `form:"userDisplayName"`
}

// Create godoc
// @Summary Create a publication
// @Tags publications
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param type formData string true "publi or agro"
// @Param photos formData file true "Image attachments (1-10, max 5 MiB each)"
// @Success 201 {object} model.Publication
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications [post]
func (h *PublicationHandler) Create(c echo.Context) error {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apierrors.ErrorResponse{
			Error: "authentication required",
		})
	}

	var req CreatePublicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	eventDate, err := parseEventDate(req.EventDate)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
			Error: "multipart form required",
		})
	}

	photoURLs, err := h.uploads.SaveAll(form.File[photosField])
	if err != nil {
		return respondError(c, err)
	}

	input := service.PublicationInput{
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		Location:        req.Location,
		UserDisplayName: req.UserDisplayName,
		Type:            model.PublicationType(req.Type),
		EventDate:       eventDate,
	}

	pub, err := h.pubService.Create(c.Request().Context(), input, photoURLs, ident.ID)
	if err != nil {
		// The row was never created; don't leave the stored files orphaned.
		h.uploads.Remove(photoURLs)
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, pub)
}

// Update godoc
// @Summary Update an owned publication
// @Tags publications
// @Accept mpfd
// @Produce json
// @Param id path string true "Publication ID"
// @Success 200 {object} model.Publication
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications/{id} [put]
func (h *PublicationHandler) Update(c echo.Context) error {
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

	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
			Error: "invalid form data",
		})
	}

	patch, httpErr := buildPatch(params)
	if httpErr != nil {
		return httpErr
	}

	// New photos append to the existing sequence; edit mode never requires
	// a photo.
	var photoURLs []string
	if form, err := c.MultipartForm(); err == nil {
		photoURLs, err = h.uploads.SaveAll(form.File[photosField])
		if err != nil {
			return respondError(c, err)
		}
	}

	pub, err := h.pubService.Update(c.Request().Context(), id, patch, photoURLs, ident.ID)
	if err != nil {
		h.uploads.Remove(photoURLs)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, pub)
}

// buildPatch turns submitted form fields into a patch. Only fields present
// in the form are set, so an absent field and an empty one stay distinct.
func buildPatch(params url.Values) (service.PublicationPatch, error) {
	var patch service.PublicationPatch

	if vals, ok := params["title"]; ok {
		patch.Title = &vals[0]
	}
	if vals, ok := params["description"]; ok {
		patch.Description = &vals[0]
	}
	if vals, ok := params["content"]; ok {
		patch.Content = &vals[0]
	}
	if vals, ok := params["location"]; ok {
		patch.Location = &vals[0]
	}
	if vals, ok := params["type"]; ok {
		pt := model.PublicationType(vals[0])
		if !pt.Valid() {
			return patch, echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
				Error: "unknown publication type",
			})
		}
		patch.Type = &pt
	}
	if vals, ok := params["eventDate"]; ok && vals[0] != "" {
		eventDate, err := parseEventDate(vals[0])
		if err != nil {
			return patch, err
		}
		patch.EventDate = eventDate
	}
	return patch, nil
}

// Delete godoc
// @Summary Delete an owned publication
// @Tags publications
// @Produce json
// @Param id path string true "Publication ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications/{id} [delete]
func (h *PublicationHandler) Delete(c echo.Context) error {
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

	if err := h.pubService.Delete(c.Request().Context(), id, ident.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "publication deleted",
	})
}

// IncrementView godoc
// @Summary Increment a publication's view counter
// @Tags publications
// @Produce json
// @Param id path string true "Publication ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publications/{id}/view [post]
func (h *PublicationHandler) IncrementView(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.pubService.IncrementViews(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "view counted",
	})
}

// Stats godoc
// @Summary Aggregate counts of the caller's publications
// @Tags publications
// @Produce json
// @Success 200 {object} service.OwnerStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /stats [get]
func (h *PublicationHandler) Stats(c echo.Context) error {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apierrors.ErrorResponse{
			Error: "authentication required",
		})
	}

	stats, err := h.pubService.Stats(c.Request().Context(), ident.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
			Error: "invalid id",
		})
	}
	return id, nil
}

// parseEventDate accepts RFC 3339 or a bare date. An empty value means no
// event date.
func parseEventDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
		Error: "invalid eventDate, expected RFC 3339 or YYYY-MM-DD",
	})
}

func atoiDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return def
}
