package handler

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jerseyhub/gallery-system/internal/api/metrics"
	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// maxUploadBytes bounds the accepted image size before transcoding.
const maxUploadBytes = 10 << 20

type DesignHandler struct {
	catalog   ports.CatalogService
	downloads ports.DownloadService
}

func NewDesignHandler(catalog ports.CatalogService, downloads ports.DownloadService) *DesignHandler {
	return &DesignHandler{catalog: catalog, downloads: downloads}
}

type catalogResponse struct {
	Items []domain.Design `json:"items"`
	Total int             `json:"total"`
}

// List serves the published catalog with optional search and tag filters.
//
// @Summary      List published designs
// @Tags         designs
// @Produce      json
// @Param        query  query     string  false  "Case-insensitive search over title and tag"
// @Param        tag    query     string  false  "Exact tag filter; All disables it"
// @Success      200    {object}  catalogResponse
// @Router       /designs [get]
func (h *DesignHandler) List(c echo.Context) error {
	items := h.catalog.Visible(c.QueryParam("query"), c.QueryParam("tag"))
	total := h.catalog.TotalVisible()
	metrics.CatalogVisibleItems.Set(float64(total))

	return c.JSON(http.StatusOK, catalogResponse{Items: items, Total: total})
}

type statsResponse struct {
	TotalDesigns int `json:"total_designs"`
}

// Stats reports the catalog headline numbers independent of any filter.
//
// @Summary      Catalog statistics
// @Tags         designs
// @Produce      json
// @Success      200  {object}  statsResponse
// @Router       /designs/stats [get]
func (h *DesignHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, statsResponse{TotalDesigns: h.catalog.TotalVisible()})
}

type uploadRequest struct {
	Title      string `json:"title" validate:"required"`
	Tag        string `json:"tag" validate:"required"`
	SourceLink string `json:"source_link"`
	// Image is the original file, base64-encoded.
	Image string `json:"image" validate:"required"`
}

// Upload accepts a design submission and queues it for review.
//
// @Summary      Submit a design for review
// @Tags         designs
// @Accept       json
// @Produce      json
// @Param        body  body      uploadRequest  true  "Design submission with a base64 image"
// @Success      201   {object}  domain.Design
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /designs [post]
func (h *DesignHandler) Upload(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if base64.StdEncoding.DecodedLen(len(req.Image)) > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}

	raw, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image must be base64 encoded")
	}

	design, err := h.catalog.Upload(c.Request().Context(), CurrentUser(c), ports.UploadDesignInput{
		Title:      req.Title,
		Tag:        req.Tag,
		SourceLink: req.SourceLink,
		RawImage:   raw,
	})
	if err != nil {
		return err
	}
	metrics.UploadsTotal.WithLabelValues(design.Tag).Inc()

	return c.JSON(http.StatusCreated, design)
}

type downloadResponse struct {
	DesignID   string  `json:"design_id"`
	SourceLink string  `json:"source_link"`
	Points     float64 `json:"points"`
}

type loginRequiredResponse struct {
	Error        string `json:"error"`
	GuestSession string `json:"guest_session"`
}

// Download reveals the source link of a design, debiting one point from
// non-admin balances. A guest's attempt is captured against a session id and
// replayed automatically after login.
//
// @Summary      Reveal a design's source link
// @Tags         designs
// @Produce      json
// @Param        id             path      string  true   "Design id"
// @Param        guest_session  query     string  false  "Guest session id from a previous 401"
// @Success      200  {object}  downloadResponse
// @Failure      401  {object}  loginRequiredResponse
// @Failure      402  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /designs/{id}/download [post]
func (h *DesignHandler) Download(c echo.Context) error {
	designID := c.Param("id")
	user := CurrentUser(c)

	if user == nil {
		session := c.QueryParam("guest_session")
		if session == "" {
			session = uuid.NewString()
		}
		_ = h.downloads.Defer(session, designID)
		metrics.DownloadsTotal.WithLabelValues("login_required").Inc()
		return c.JSON(http.StatusUnauthorized, loginRequiredResponse{
			Error:        "login required",
			GuestSession: session,
		})
	}

	res, err := h.downloads.Download(c.Request().Context(), user, designID)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues(downloadOutcome(err)).Inc()
		return err
	}
	metrics.DownloadsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, downloadResponse{
		DesignID:   res.DesignID,
		SourceLink: res.SourceLink,
		Points:     res.Remaining.Float(),
	})
}

func downloadOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientPoints):
		return "insufficient_points"
	case errors.Is(err, domain.ErrDownloadInFlight):
		return "in_flight"
	case errors.Is(err, domain.ErrLoginRequired):
		return "login_required"
	default:
		return "error"
	}
}

type deleteRequestBody struct {
	Reason string `json:"reason"`
}

// RequestDelete files a moderation ticket asking an admin to remove a design.
//
// @Summary      Request removal of a design
// @Tags         designs
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Design id"
// @Param        body  body      deleteRequestBody  true  "Removal reason"
// @Success      201   {object}  domain.DeleteRequest
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /designs/{id}/delete-request [post]
func (h *DesignHandler) RequestDelete(c echo.Context) error {
	var body deleteRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	req, err := h.catalog.RequestDelete(c.Request().Context(), CurrentUser(c), c.Param("id"), body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, req)
}
