package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/karimahmed315/task-manager/internal/auth"
	dom "github.com/karimahmed315/task-manager/internal/domain"
	"github.com/karimahmed315/task-manager/internal/dto"
	"github.com/karimahmed315/task-manager/internal/recurrence"
	"github.com/karimahmed315/task-manager/internal/repo"
	"github.com/karimahmed315/task-manager/internal/service"
	"github.com/karimahmed315/task-manager/internal/timefmt"

	"github.com/gin-gonic/gin"
)

// TaskHandler exposes the task lifecycle and query surface.
type TaskHandler struct {
	svc   *service.TaskService
	users *service.UserService
}

// NewTaskHandler returns a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, users *service.UserService) *TaskHandler {
	return &TaskHandler{svc: svc, users: users}
}

// formats loads the requesting user's display format configuration.
func (h *TaskHandler) formats(c *gin.Context) (int64, timefmt.Config, bool) {
	userID := auth.UserIDFromContext(c)
	cfg, err := h.users.Formats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user settings"})
		return 0, timefmt.Config{}, false
	}
	return userID, cfg, true
}

// writeError maps service errors to HTTP responses, keeping the
// structured detail the service attached.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var perr *timefmt.ParseError
	var serr *service.InvalidStateError
	var derr *service.InvalidDurationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Error(), "field": verr.Field, "value": verr.Value, "expected": verr.Hint,
		})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": perr.Error(), "date": perr.DateStr, "time": perr.TimeStr, "expected": perr.Hint,
		})
	case errors.As(err, &derr):
		c.JSON(http.StatusBadRequest, gin.H{"error": derr.Error(), "value": derr.Value})
	case errors.As(err, &serr):
		c.JSON(http.StatusConflict, gin.H{"error": serr.Error(), "location": string(serr.Location)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), userID, cfg, service.CreateTaskInput{
		Description: req.Description,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
		Priority:    dom.Priority(req.Priority),
		Recurrence:  recurrence.Frequency(req.Recurrence),
		CustomDays:  req.CustomDays,
		RepeatUntil: req.RepeatUntil,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TaskToResponse(t, cfg))
}

// OnDate godoc
// @Summary      List active tasks due on a date
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        date  query     string  true   "Date (YYYY-MM-DD)"
// @Param        sort  query     string  false  "Sort: time or priority"
// @Success      200   {object}  dto.ListTasksResponse
// @Failure      400   {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) OnDate(c *gin.Context) {
	day, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	sort := repo.SortBy(c.DefaultQuery("sort", string(repo.SortByTime)))
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	list, err := h.svc.TasksOnDate(c.Request.Context(), userID, day, sort)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list, cfg)})
}

// All godoc
// @Summary      List all active tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListTasksResponse
// @Router       /tasks/all [get]
func (h *TaskHandler) All(c *gin.Context) {
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	list, err := h.svc.AllActive(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list, cfg)})
}

// Month godoc
// @Summary      List active tasks due in a month
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        year   query     int  true  "Year"
// @Param        month  query     int  true  "Month (1-12)"
// @Success      200    {object}  dto.ListTasksResponse
// @Failure      400    {object}  map[string]string
// @Router       /tasks/month [get]
func (h *TaskHandler) Month(c *gin.Context) {
	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and month must be integers"})
		return
	}
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	list, err := h.svc.TasksInMonth(c.Request.Context(), userID, year, time.Month(month))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list, cfg)})
}

// Upcoming godoc
// @Summary      List upcoming tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        filter  query     string  false  "Window: next7, next30, next365 or all"
// @Success      200     {object}  dto.ListTasksResponse
// @Failure      400     {object}  map[string]string
// @Router       /tasks/upcoming [get]
func (h *TaskHandler) Upcoming(c *gin.Context) {
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	list, err := h.svc.Upcoming(c.Request.Context(), userID, c.DefaultQuery("filter", "next7"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list, cfg)})
}

// Due godoc
// @Summary      List tasks due now or overdue
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListTasksResponse
// @Router       /tasks/due [get]
func (h *TaskHandler) Due(c *gin.Context) {
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	list, err := h.svc.DueNow(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list, cfg)})
}

// Complete godoc
// @Summary      Mark a task complete
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	t, err := h.svc.Complete(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t, cfg))
}

// Snooze godoc
// @Summary      Snooze an active task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Task ID"
// @Param        body  body      dto.SnoozeRequest  true  "Snooze duration: 10m, 1h or 1d"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tasks/{id}/snooze [post]
func (h *TaskHandler) Snooze(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	t, err := h.svc.Snooze(c.Request.Context(), userID, id, req.Duration)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t, cfg))
}

// Delete godoc
// @Summary      Soft-delete a task
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	t, err := h.svc.SoftDelete(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t, cfg))
}

// Completed godoc
// @Summary      List completed tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        filter  query     string  false  "Window: last7, last30, last365 or all"
// @Success      200     {object}  dto.ListTasksResponse
// @Failure      400     {object}  map[string]string
// @Router       /completed_tasks [get]
func (h *TaskHandler) Completed(c *gin.Context) {
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	list, err := h.svc.Completed(c.Request.Context(), userID, c.DefaultQuery("filter", "all"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list, cfg)})
}

// DeleteAllCompleted godoc
// @Summary      Move all completed tasks to deleted
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.BulkResponse
// @Router       /completed_tasks/all [delete]
func (h *TaskHandler) DeleteAllCompleted(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	n, err := h.svc.DeleteAllCompleted(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkResponse{Message: "completed tasks moved to deleted", Count: n})
}

// Deleted godoc
// @Summary      List deleted tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListTasksResponse
// @Router       /deleted_tasks [get]
func (h *TaskHandler) Deleted(c *gin.Context) {
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	list, err := h.svc.Deleted(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list, cfg)})
}

// Restore godoc
// @Summary      Restore a deleted task
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /deleted_tasks/{id}/restore [post]
func (h *TaskHandler) Restore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, cfg, ok := h.formats(c)
	if !ok {
		return
	}
	t, err := h.svc.Restore(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t, cfg))
}

// RestoreAll godoc
// @Summary      Restore all deleted tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.BulkResponse
// @Router       /deleted_tasks/all/restore [post]
func (h *TaskHandler) RestoreAll(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	toActive, toCompleted, err := h.svc.RestoreAll(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkResponse{
		Message:   "deleted tasks restored",
		Count:     toActive + toCompleted,
		Active:    toActive,
		Completed: toCompleted,
	})
}

// PermanentDelete godoc
// @Summary      Permanently delete a task
// @Tags         tasks
// @Security     CookieAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /deleted_tasks/{id} [delete]
func (h *TaskHandler) PermanentDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID := auth.UserIDFromContext(c)
	if err := h.svc.PermanentlyDelete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PermanentDeleteAll godoc
// @Summary      Permanently delete all deleted tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.BulkResponse
// @Router       /deleted_tasks/all [delete]
func (h *TaskHandler) PermanentDeleteAll(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	n, err := h.svc.PermanentlyDeleteAll(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkResponse{Message: "deleted tasks permanently removed", Count: n})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
