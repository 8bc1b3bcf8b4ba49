package server

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"task-manager/internal/service"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// IdempotencyStore claims request keys so repeated POSTs are rejected.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

// Deps are the collaborators the HTTP layer needs. Idempotency is optional.
type Deps struct {
	Tasks       *service.TaskService
	Users       *service.UserService
	Categories  *service.CategoryService
	DB          Pinger
	Idempotency IdempotencyStore
}

// Server provides HTTP handlers for the task API.
type Server struct {
	engine     *gin.Engine
	log        *log.Logger
	tasks      *service.TaskService
	users      *service.UserService
	categories *service.CategoryService
	db         Pinger
	idem       IdempotencyStore
}

var registerTagNames sync.Once

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	registerTagNames.Do(useJSONFieldNames)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), recovery(logger))

	srv := &Server{
		engine:     router,
		log:        logger,
		tasks:      deps.Tasks,
		users:      deps.Users,
		categories: deps.Categories,
		db:         deps.DB,
		idem:       deps.Idempotency,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.Use(idempotency(s.idem, s.log))
	{
		api.GET("/healthz", s.handleHealth)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.GET("/:id", s.handleGetTask)
			tasks.PUT("/:id", s.handleUpdateTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
		}

		users := api.Group("/users")
		{
			users.GET("", s.handleListUsers)
			users.POST("", s.handleCreateUser)
			users.GET("/:id", s.handleGetUser)
			users.PUT("/:id", s.handleUpdateUser)
			users.DELETE("/:id", s.handleDeleteUser)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", s.handleListCategories)
			categories.POST("", s.handleCreateCategory)
			categories.GET("/:id", s.handleGetCategory)
			categories.PUT("/:id", s.handleUpdateCategory)
			categories.DELETE("/:id", s.handleDeleteCategory)
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
}

// handleHealth reports readiness based on a database ping.
func (s *Server) handleHealth(c *gin.Context) {
	if s.db != nil {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			s.log.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// useJSONFieldNames makes validation errors report the JSON field names
// clients actually send.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}
