package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

type createTaskRequest struct {
	Title       *string `json:"title" binding:"required"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	UserID      *uint   `json:"userId" binding:"required"`
	CategoryID  *uint   `json:"categoryId" binding:"required"`
}

// updateTaskRequest keeps description raw so an explicit null, which clears
// it, can be told apart from an absent field.
type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description json.RawMessage `json:"description"`
	Completed   *bool           `json:"completed"`
}

func (r updateTaskRequest) patch() (service.TaskPatch, error) {
	patch := service.TaskPatch{Title: r.Title, Completed: r.Completed}
	switch {
	case len(r.Description) == 0:
	case string(r.Description) == "null":
		patch.ClearDescription = true
	default:
		var desc string
		if err := json.Unmarshal(r.Description, &desc); err != nil {
			return patch, service.NewValidationError("description", "must be a string")
		}
		patch.Description = &desc
	}
	return patch, nil
}

// handleListTasks returns every task.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, tasks)
}

// handleCreateTask inserts a task for an existing user and category.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	input := service.TaskInput{
		Title:       *req.Title,
		Description: req.Description,
		UserID:      *req.UserID,
		CategoryID:  *req.CategoryID,
	}
	if req.Completed != nil {
		input.Completed = *req.Completed
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	task, err := s.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// handleUpdateTask changes only the fields present in the body.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req updateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	patch, err := req.patch()
	if err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// handleDeleteTask removes a task and echoes the deleted row.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	task, err := s.tasks.DeleteTask(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}
