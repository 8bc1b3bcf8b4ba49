package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

type createUserRequest struct {
	Name  *string `json:"name" binding:"required"`
	Email *string `json:"email" binding:"required,email"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, users)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	user, err := s.users.CreateUser(c.Request.Context(), service.UserInput{Name: req.Name, Email: req.Email})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	user, err := s.users.GetUser(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	user, err := s.users.UpdateUser(c.Request.Context(), id, service.UserInput{Name: req.Name, Email: req.Email})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// handleDeleteUser removes a user; users that still own tasks are kept (409).
func (s *Server) handleDeleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	user, err := s.users.DeleteUser(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}
