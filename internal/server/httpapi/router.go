package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, userName, password string) (*services.RegisteredUser, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshTokens(ctx context.Context, token string) (*services.TokenPair, error)
}

type TodoService interface {
	List(ctx context.Context, userID int64) ([]models.TodoItem, error)
	Get(ctx context.Context, userID, id int64) (*models.TodoItem, error)
	Create(ctx context.Context, userID int64, name string, isComplete bool) (*models.TodoItem, error)
	Update(ctx context.Context, userID, id int64, name string, isComplete bool) error
	Delete(ctx context.Context, userID, id int64) error
}

type TokenParser interface {
	Parse(token string) (*auth.AccessClaims, error)
}

// Deps are the collaborators the router dispatches to. Health may be nil.
type Deps struct {
	Auth   AuthService
	Todos  TodoService
	Tokens TokenParser
	Health func(ctx context.Context) error
	Logger logging.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(d.Logger), Recovery(d.Logger))

	r.GET("/healthz", healthHandler(d.Health))

	ah := &authHandler{svc: d.Auth, logger: d.Logger}
	a := r.Group("/api/Auth")
	a.POST("/register", ah.register)
	a.POST("/login", ah.login)
	a.POST("/refresh-token", ah.refresh)

	th := &todoHandler{svc: d.Todos, logger: d.Logger}
	t := r.Group("/api/TodoItems", AuthMiddleware(d.Tokens))
	t.GET("", th.list)
	t.GET("/:id", th.get)
	t.POST("", th.create)
	t.PUT("/:id", th.update)
	t.DELETE("/:id", th.delete)

	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "not found")
	})
	return r
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// internalError logs err with the request's logger and answers 500 without
// leaking details.
func internalError(c *gin.Context, fallback logging.Logger, err error) {
	requestLogger(c, fallback).Error(c.Request.Context(), "request failed", "error", err)
	abortWithError(c, http.StatusInternalServerError, "internal error")
}
