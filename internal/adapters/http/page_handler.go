package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dayplanner/core/internal/domain/entities"
	"github.com/dayplanner/core/internal/infrastructure/logger"
	"github.com/dayplanner/core/internal/ports"
)

// PageData is the view model of day.html
type PageData struct {
	AppName      string
	Today        string
	ProfileImage template.URL
	Header       ports.HeaderView
	Day          ports.DayView
}

// PageHandler serves the HTML planner page and its form posts
type PageHandler struct {
	planner ports.PlannerService
	logger  *logger.Logger
	now     func() time.Time
	appName string
}

// NewPageHandler creates a new page handler
func NewPageHandler(planner ports.PlannerService, appLogger *logger.Logger, now func() time.Time, appName string) *PageHandler {
	if now == nil {
		now = time.Now
	}
	if appLogger == nil {
		appLogger = logger.NewNop()
	}
	return &PageHandler{
		planner: planner,
		logger:  appLogger,
		now:     now,
		appName: appName,
	}
}

// Register mounts the page routes
func (h *PageHandler) Register(e *echo.Echo) {
	e.GET("/", h.Index)
	e.POST("/tasks", h.AddTask)
	e.POST("/tasks/:id/toggle", h.ToggleTask)
	e.POST("/tasks/:id/delete", h.DeleteTask)
	e.POST("/date", h.SelectDate)
}

// Index renders the selected day. A valid ?date= switches the selection first.
func (h *PageHandler) Index(c echo.Context) error {
	if date := c.QueryParam("date"); date != "" {
		if err := h.planner.SetSelectedDate(date); err != nil {
			h.logger.Warnw("Rejected date query", "date", date)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date")
		}
	}

	now := h.now()
	header := h.planner.Header(now)
	data := PageData{
		AppName: h.appName,
		Today:   entities.FormatDate(now),
		// The image is written only by the local user, data: URIs included.
		ProfileImage: template.URL(header.ProfileImage),
		Header:       header,
		Day:          h.planner.Day(h.planner.SelectedDate()),
	}
	return c.Render(http.StatusOK, "day.html", data)
}

// AddTask handles the add-task form. Blank text is silently ignored.
func (h *PageHandler) AddTask(c echo.Context) error {
	var req ports.AddTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Date == "" {
		req.Date = h.planner.SelectedDate()
	}
	if strings.TrimSpace(req.Text) != "" {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.planner.AddTask(c.Request().Context(), req.Text, req.Date)
	}

	return h.backToPlanner(c)
}

// ToggleTask handles the checkbox form
func (h *PageHandler) ToggleTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}
	h.planner.ToggleTask(c.Request().Context(), id)
	return h.backToPlanner(c)
}

// DeleteTask handles the delete form
func (h *PageHandler) DeleteTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}
	h.planner.DeleteTask(c.Request().Context(), id)
	return h.backToPlanner(c)
}

// SelectDate handles the date picker form
func (h *PageHandler) SelectDate(c echo.Context) error {
	var req ports.SelectDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.planner.SetSelectedDate(req.Date); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date")
	}
	return h.backToPlanner(c)
}

func (h *PageHandler) backToPlanner(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/")
}

func parseTaskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	return id, nil
}
