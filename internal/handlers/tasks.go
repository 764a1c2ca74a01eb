package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db              *gorm.DB
	taskService     services.TaskService
	deleteOwnerOnly bool
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, deleteOwnerOnly bool) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, deleteOwnerOnly: deleteOwnerOnly}
}

// GetTasks returns one page of tasks visible to the caller, filtered by any
// of status, priority and assignedTo.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))

	filters := services.TaskFilters{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		id, err := uuid.FromString(assignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignedTo filter"})
			return
		}
		filters.AssignedTo = &id
	}

	tasks, pagination, err := h.taskService.ListTasks(h.db, actor, filters, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      tasks,
		"pagination": pagination,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	task, err := h.taskService.GetTaskByID(h.db, id)
	if err != nil {
		respondServiceError(c, err, "Task not found")
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate" binding:"required"`
		Priority    string `json:"priority"`
		AssignedTo  string `json:"assignedTo"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title and due date are required", "error": err.Error()})
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid due date", "error": err.Error()})
		return
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    req.Priority,
		CreatedByID: actor.ID, // always the authenticated creator
	}

	if req.AssignedTo != "" {
		assigneeID, err := uuid.FromString(req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignee"})
			return
		}
		task.AssignedToID = &assigneeID
	}

	created, err := h.taskService.CreateTask(h.db, task)
	if err != nil {
		respondServiceError(c, err, "Assigned user not found")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateTask performs a partial merge. A field overwrites the stored value
// only when present and non-empty, except description (empty string clears)
// and assignedTo (explicit null unassigns).
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	var req struct {
		Title       string          `json:"title"`
		Description *string         `json:"description"`
		DueDate     string          `json:"dueDate"`
		Priority    string          `json:"priority"`
		Status      string          `json:"status"`
		AssignedTo  json.RawMessage `json:"assignedTo"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	update := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	}

	if req.DueDate != "" {
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid due date", "error": err.Error()})
			return
		}
		update.DueDate = dueDate
	}

	if len(req.AssignedTo) > 0 {
		update.AssignedToSet = true
		if string(req.AssignedTo) != "null" {
			var assignee string
			if err := json.Unmarshal(req.AssignedTo, &assignee); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignee"})
				return
			}
			if assignee != "" {
				assigneeID, err := uuid.FromString(assignee)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignee"})
					return
				}
				update.AssignedTo = &assigneeID
			}
		}
	}

	task, err := h.taskService.UpdateTask(h.db, id, update)
	if err != nil {
		respondServiceError(c, err, "Task not found")
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	if err := h.taskService.DeleteTask(h.db, id, actor, h.deleteOwnerOnly); err != nil {
		respondServiceError(c, err, "Task not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SetStatus handles the narrow status-only transition driven by the board UI.
func (h *TaskHandler) SetStatus(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	task, err := h.taskService.SetStatus(h.db, id, req.Status)
	if err != nil {
		respondServiceError(c, err, "Task not found")
		return
	}

	c.JSON(http.StatusOK, task)
}

// SetPriority handles the narrow priority-only transition.
func (h *TaskHandler) SetPriority(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	var req struct {
		Priority string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid priority"})
		return
	}

	task, err := h.taskService.SetPriority(h.db, id, req.Priority)
	if err != nil {
		respondServiceError(c, err, "Task not found")
		return
	}

	c.JSON(http.StatusOK, task)
}

// parseDueDate accepts RFC3339 timestamps and bare calendar dates.
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
