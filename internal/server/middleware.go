package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"
	ctxRequestID         = "request_id"
)

// recovery turns panics into a logged 500 response.
func recovery(logger *log.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		logger.WithFields(log.Fields{
			"panic":      rec,
			"route":      c.FullPath(),
			"request_id": c.GetString(ctxRequestID),
		}).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// requestLogger writes one structured entry per request.
func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": float64(time.Since(start)) / float64(time.Millisecond),
			"request_id": c.GetString(ctxRequestID),
			"client_ip":  c.ClientIP(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields["error"] = errs.Last().Error()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("http.request")
		case status >= http.StatusBadRequest:
			entry.Warn("http.request")
		default:
			entry.Info("http.request")
		}
	}
}

// idempotency rejects a POST whose Idempotency-Key was already used on the
// same route. Keys of failed or panicking requests are released so clients
// can retry.
// Store errors fail open.
func idempotency(store IdempotencyStore, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(headerIdempotencyKey)
		if store == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		scope := c.FullPath()
		ctx := c.Request.Context()
		claimed, err := store.Claim(ctx, scope, key)
		if err != nil {
			logger.WithError(err).WithField("route", scope).Warn("idempotency claim failed")
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate request"})
			return
		}

		// Also runs when the handler panics; recovery sits further up the chain.
		finished := false
		defer func() {
			if finished && c.Writer.Status() < http.StatusBadRequest {
				return
			}
			if err := store.Release(context.WithoutCancel(ctx), scope, key); err != nil {
				logger.WithError(err).WithField("route", scope).Warn("idempotency release failed")
			}
		}()

		c.Next()
		finished = true
	}
}
