package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name *string `json:"name"`
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.categories.ListCategories(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	category, err := s.categories.CreateCategory(c.Request.Context(), name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, category)
}

func (s *Server) handleGetCategory(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	category, err := s.categories.GetCategory(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, category)
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	category, err := s.categories.RenameCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	category, err := s.categories.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, category)
}
