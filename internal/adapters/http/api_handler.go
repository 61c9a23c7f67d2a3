package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dayplanner/core/internal/domain/entities"
	"github.com/dayplanner/core/internal/infrastructure/logger"
	"github.com/dayplanner/core/internal/ports"
)

// APIHandler serves the JSON API under /api/v1
type APIHandler struct {
	planner ports.PlannerService
	logger  *logger.Logger
	now     func() time.Time
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(planner ports.PlannerService, appLogger *logger.Logger, now func() time.Time) *APIHandler {
	if now == nil {
		now = time.Now
	}
	if appLogger == nil {
		appLogger = logger.NewNop()
	}
	return &APIHandler{
		planner: planner,
		logger:  appLogger,
		now:     now,
	}
}

// Register mounts the API routes on g
func (h *APIHandler) Register(g *echo.Group) {
	g.GET("/tasks", h.ListTasks)
	g.POST("/tasks", h.CreateTask)
	g.POST("/tasks/:id/toggle", h.ToggleTask)
	g.DELETE("/tasks/:id", h.DeleteTask)
	g.GET("/stats", h.GetStats)
	g.GET("/day/:date", h.GetDay)
	g.PUT("/selected-date", h.SelectDate)
}

// ListTasks returns every task, or the tasks of ?date= when given
func (h *APIHandler) ListTasks(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusOK, h.planner.Tasks())
	}
	if !entities.IsValidDate(date) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date")
	}
	return c.JSON(http.StatusOK, h.planner.Day(date).Tasks)
}

// CreateTask adds a task. The date defaults to the selected date.
func (h *APIHandler) CreateTask(c echo.Context) error {
	var req ports.AddTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date := req.Date
	if date == "" {
		date = h.planner.SelectedDate()
	}

	task, ok := h.planner.AddTask(c.Request().Context(), req.Text, date)
	if !ok {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Task text must not be blank")
	}
	return c.JSON(http.StatusCreated, task)
}

// ToggleTask flips the completion state of a task
func (h *APIHandler) ToggleTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	task, ok := h.planner.ToggleTask(c.Request().Context(), id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task
func (h *APIHandler) DeleteTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	if !h.planner.DeleteTask(c.Request().Context(), id) {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetStats returns streak, total score and the selected day's score
func (h *APIHandler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.planner.Stats(h.now()))
}

// GetDay returns the day view of one date
func (h *APIHandler) GetDay(c echo.Context) error {
	date := c.Param("date")
	if !entities.IsValidDate(date) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date")
	}
	return c.JSON(http.StatusOK, h.planner.Day(date))
}

// SelectDate changes the selected date
func (h *APIHandler) SelectDate(c echo.Context) error {
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

	h.logger.Debugw("Selected date changed", "date", req.Date)
	return c.JSON(http.StatusOK, h.planner.Stats(h.now()))
}
