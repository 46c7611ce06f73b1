package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jerseyhub/gallery-system/internal/api/metrics"
	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

type AdminHandler struct {
	moderation ports.ModerationService
	admin      ports.AdminService
	points     ports.PointsService
}

func NewAdminHandler(moderation ports.ModerationService, admin ports.AdminService, points ports.PointsService) *AdminHandler {
	return &AdminHandler{moderation: moderation, admin: admin, points: points}
}

// PendingDesigns lists the design review queue, newest first.
//
// @Summary      List designs awaiting review
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.Design
// @Failure      403  {object}  map[string]string
// @Router       /admin/designs/pending [get]
func (h *AdminHandler) PendingDesigns(c echo.Context) error {
	designs, err := h.moderation.PendingDesigns(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, designs)
}

// ApproveDesign publishes a pending design and credits its uploader.
//
// @Summary      Approve a pending design
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Design id"
// @Success      204  "approved"
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /admin/designs/{id}/approve [post]
func (h *AdminHandler) ApproveDesign(c echo.Context) error {
	if err := h.moderation.ApproveDesign(c.Request().Context(), CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues(domain.ActionApproveDesign).Inc()
	return c.NoContent(http.StatusNoContent)
}

// RejectDesign removes a pending design without crediting anyone.
//
// @Summary      Reject a pending design
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Design id"
// @Success      204  "rejected"
// @Failure      403  {object}  map[string]string
// @Router       /admin/designs/{id}/reject [post]
func (h *AdminHandler) RejectDesign(c echo.Context) error {
	if err := h.moderation.RejectDesign(c.Request().Context(), CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues(domain.ActionRejectDesign).Inc()
	return c.NoContent(http.StatusNoContent)
}

// PendingRequests lists the delete-request review queue.
//
// @Summary      List pending delete requests
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.DeleteRequest
// @Failure      403  {object}  map[string]string
// @Router       /admin/delete-requests [get]
func (h *AdminHandler) PendingRequests(c echo.Context) error {
	requests, err := h.moderation.PendingRequests(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

// ApproveRequest removes the referenced design together with the request.
//
// @Summary      Approve a delete request
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Request id"
// @Success      204  "approved"
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/delete-requests/{id}/approve [post]
func (h *AdminHandler) ApproveRequest(c echo.Context) error {
	if err := h.moderation.ApproveDeleteRequest(c.Request().Context(), CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues(domain.ActionApproveRequest).Inc()
	return c.NoContent(http.StatusNoContent)
}

// RejectRequest discards the request and leaves the design published.
//
// @Summary      Reject a delete request
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Request id"
// @Success      204  "rejected"
// @Failure      403  {object}  map[string]string
// @Router       /admin/delete-requests/{id}/reject [post]
func (h *AdminHandler) RejectRequest(c echo.Context) error {
	if err := h.moderation.RejectDeleteRequest(c.Request().Context(), CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues(domain.ActionRejectRequest).Inc()
	return c.NoContent(http.StatusNoContent)
}

// Users lists every profile for the admin console.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   userPayload
// @Failure      403  {object}  map[string]string
// @Router       /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.admin.Users(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return err
	}
	out := make([]*userPayload, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPayload(u))
	}
	return c.JSON(http.StatusOK, out)
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// SetBanned toggles a member's ban flag. The ban takes effect on the
// target's next request.
//
// @Summary      Ban or unban a member
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string      true  "User id"
// @Param        body  body      banRequest  true  "Desired ban state"
// @Success      204   "updated"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/users/{id}/ban [post]
func (h *AdminHandler) SetBanned(c echo.Context) error {
	var req banRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.admin.SetBanned(c.Request().Context(), CurrentUser(c), c.Param("id"), req.Banned); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type rechargeRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// Recharge credits an operator-entered amount to a member balance. Amounts
// accept half-point precision.
//
// @Summary      Credit points to a member
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "User id"
// @Param        body  body      rechargeRequest  true  "Amount in points, e.g. 2.5"
// @Success      200   {object}  userPayload
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /admin/users/{id}/points [post]
func (h *AdminHandler) Recharge(c echo.Context) error {
	var req rechargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.points.Recharge(c.Request().Context(), CurrentUser(c), c.Param("id"), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserPayload(user))
}
