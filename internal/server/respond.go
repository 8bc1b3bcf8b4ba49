package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"task-manager/internal/service"
)

// respondData wraps payload in the {"data": ...} envelope.
func respondData(c *gin.Context, status int, payload any) {
	c.JSON(status, gin.H{"data": payload})
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and hidden behind a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, service.ErrReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).WithField("route", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSON decodes and validates the request body into dst. Decoding and
// binding failures are returned as *service.ValidationError.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &fieldErrs):
		verr := &service.ValidationError{}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), describeRule(fe))
		}
		return verr
	case errors.As(err, &typeErr):
		return service.NewValidationError(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type.String()))
	case errors.Is(err, io.EOF):
		return service.NewValidationError("body", "is required")
	default:
		return service.NewValidationError("body", "must be valid JSON")
	}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// parseID converts a path parameter to a positive identifier.
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, service.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}
