package booking

import (
	"net/http"
	"strconv"

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
	staff.GET("/booking/availability", h.Availability)
	staff.GET("/booking/windows", h.ListWindows)
	staff.GET("/booking/windows/:id/slots", h.Slots)
	staff.GET("/booking/holidays", h.ListHolidays)
	staff.POST("/appointments", h.Book)
	staff.GET("/appointments", h.ListAppointments)
	staff.GET("/appointments/:id", h.GetAppointment)
	staff.DELETE("/appointments/:id", h.CancelAppointment)

	admin := api.Group("", auth.RequireRole(auth.RoleReviewer))
	admin.POST("/booking/windows", h.CreateWindow)
	admin.PUT("/booking/windows/:id", h.UpdateWindow)
	admin.DELETE("/booking/windows/:id", h.DeleteWindow)
	admin.POST("/booking/holidays", h.CreateHoliday)
	admin.DELETE("/booking/holidays/:id", h.DeleteHoliday)
	admin.POST("/booking/permissions", h.GrantPermission)
	admin.GET("/booking/permissions", h.ListPermissions)
	admin.DELETE("/booking/permissions/:id", h.RevokePermission)
}

// actorRole collapses the caller's roles into the one the booking gate
// cares about: the strongest of reviewer and caregiver.
func actorRole(c echo.Context) string {
	ctx := c.Request().Context()
	for _, r := range auth.RolesFromContext(ctx) {
		if r == auth.RoleAdmin {
			return auth.RoleAdmin
		}
	}
	if auth.HasRole(ctx, auth.RoleReviewer) {
		return auth.RoleReviewer
	}
	return auth.RoleCaregiver
}

func (h *Handler) Availability(c echo.Context) error {
	caregiverID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver identity")
	}
	decision, err := h.svc.Availability(c.Request().Context(), caregiverID, actorRole(c))
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, decision)
}

// =========== windows ===========

func (h *Handler) CreateWindow(c echo.Context) error {
	var w ScheduleWindow
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateWindow(c.Request().Context(), &w); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) UpdateWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var w ScheduleWindow
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w.ID = id
	if err := h.svc.UpdateWindow(c.Request().Context(), &w); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteWindow(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListWindows(c echo.Context) error {
	items, err := h.svc.ListWindows(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Slots(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	slots, err := h.svc.Slots(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, slots)
}

// =========== holidays ===========

func (h *Handler) CreateHoliday(c echo.Context) error {
	var hd Holiday
	if err := c.Bind(&hd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateHoliday(c.Request().Context(), &hd); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, hd)
}

func (h *Handler) DeleteHoliday(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteHoliday(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListHolidays(c echo.Context) error {
	year := h.yearOrDefault(c, "from_year")
	toYear := year
	if v := c.QueryParam("to_year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to_year")
		}
		toYear = parsed
	}
	items, err := h.svc.ListHolidays(c.Request().Context(), year, toYear)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) yearOrDefault(c echo.Context, param string) int {
	if v := c.QueryParam(param); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return h.svc.now().In(h.svc.loc).Year()
}

// =========== permissions ===========

func (h *Handler) GrantPermission(c echo.Context) error {
	var p ExceptionalPermission
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.GrantPermission(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) RevokePermission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RevokePermission(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPermissions(c echo.Context) error {
	cid, err := uuid.Parse(c.QueryParam("caregiver_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver_id")
	}
	items, err := h.svc.ListPermissions(c.Request().Context(), cid)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// =========== appointments ===========

func (h *Handler) Book(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Caregivers book for themselves; the token is the identity.
	if !auth.HasRole(c.Request().Context(), auth.RoleReviewer) {
		cid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver identity")
		}
		a.CaregiverID = cid
	}
	if err := h.svc.Book(c.Request().Context(), &a, actorRole(c)); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.CancelAppointment(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if pid := c.QueryParam("patient_id"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(ctx, id, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	cid, err := uuid.Parse(c.QueryParam("caregiver_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver_id")
	}
	items, total, err := h.svc.ListByCaregiver(ctx, cid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(clinicerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
