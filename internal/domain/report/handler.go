package report

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinident/clinident/internal/platform/auth"
	"github.com/clinident/clinident/pkg/clinicerr"
	"github.com/clinident/clinident/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleCaregiver, auth.RoleReviewer))
	staff.POST("/reports", h.Submit)
	staff.GET("/reports/:id", h.Get)
	staff.GET("/reports", h.ListByPatient)
	staff.GET("/rejections/active", h.ActiveRejections)

	review := api.Group("", auth.RequireRole(auth.RoleReviewer))
	review.GET("/report-items/pending", h.PendingItems)
	review.POST("/report-items/:id/approve", h.Approve)
	review.POST("/report-items/:id/reject", h.Reject)
}

type submitRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
	Note   *string   `json:"note,omitempty"`
	Items  []struct {
		ItemType         string `json:"item_type"`
		Specification    string `json:"specification"`
		ReportedProgress string `json:"reported_progress"`
	} `json:"items"`
}

func (h *Handler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	caregiverID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver identity")
	}

	rep := &Report{PlanID: req.PlanID, CaregiverID: caregiverID, Note: req.Note}
	items := make([]*Item, len(req.Items))
	for n, it := range req.Items {
		items[n] = &Item{
			ItemType:         it.ItemType,
			Specification:    it.Specification,
			ReportedProgress: it.ReportedProgress,
		}
	}
	if err := h.svc.Submit(c.Request().Context(), rep, items); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rep, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pid, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) PendingItems(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PendingItems(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type approveRequest struct {
	Progress *string `json:"progress,omitempty"`
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	reviewerID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reviewer identity")
	}
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Approve(c.Request().Context(), id, reviewerID, req.Progress); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type rejectRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	reviewerID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reviewer identity")
	}
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Reject(c.Request().Context(), id, reviewerID, req.Comment); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ActiveRejections(c echo.Context) error {
	caregiverID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver identity")
	}
	// Reviewers may inspect another caregiver's backlog.
	if cid := c.QueryParam("caregiver_id"); cid != "" && auth.HasRole(c.Request().Context(), auth.RoleReviewer) {
		caregiverID, err = uuid.Parse(cid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver_id")
		}
	}
	items, err := h.svc.ActiveRejections(c.Request().Context(), caregiverID)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
