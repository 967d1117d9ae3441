package tasks

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"todosome/internal/domain/models"
	"todosome/internal/http/middleware"
	"todosome/internal/http/response"
)

// Tasks is implemented by services/tasks
type Tasks interface {
	List(ctx context.Context, userID string) ([]models.Task, error)
	Create(ctx context.Context, userID string, title string, description string) (models.Task, error)
	Update(ctx context.Context, userID string, taskID string, upd models.TaskUpdate) (models.Task, error)
	Delete(ctx context.Context, userID string, taskID string) error
}

type Handler struct {
	tasks Tasks
}

func NewHandler(tasks Tasks) *Handler {
	return &Handler{tasks: tasks}
}

// Register mounts routes under /tasks, all of them are guarded
func (h *Handler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	g := rg.Group("/tasks", guard)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

type createRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func userID(c *gin.Context) (string, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.KindUnauthorized, "Not authorized")
	}
	return id, ok
}

func (h *Handler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	list, err := h.tasks.List(c.Request.Context(), uid)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), uid, req.Title, req.Description)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) Update(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), uid, c.Param("id"), models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	taskID := c.Param("id")
	if err := h.tasks.Delete(c.Request.Context(), uid, taskID); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task removed", "id": taskID})
}
