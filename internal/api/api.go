// Package api is the HTTP surface of the VentureMind backend.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturemind/venturemind-backend/internal/a2a"
	"github.com/venturemind/venturemind-backend/internal/account"
	"github.com/venturemind/venturemind-backend/internal/models"
	"github.com/venturemind/venturemind-backend/internal/store"
	"github.com/venturemind/venturemind-backend/internal/venture"
)

type Generator interface {
	Run(ctx context.Context, idea string, observe venture.Observer) (models.CompositeResult, error)
}

type Accounts interface {
	Signup(ctx context.Context, req account.SignupRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*account.Token, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type HistoryStore interface {
	AddHistory(ctx context.Context, item *models.HistoryItem) error
	ListHistory(ctx context.Context, userID string) ([]models.HistoryItem, error)
	GetHistory(ctx context.Context, userID, id string) (*models.HistoryItem, error)
}

// LogoArchive moves inline logos out of saved history and back.
type LogoArchive interface {
	Archive(ctx context.Context, owner string, pack *models.StartupPack) error
	Resolve(ctx context.Context, pack *models.StartupPack)
}

type RateLimit struct {
	RPS   float64
	Burst int
}

type Deps struct {
	Generator Generator
	Accounts  Accounts
	History   HistoryStore
	// Logos is optional.
	Logos     LogoArchive
	Agent     *a2a.A2AHandler
	RateLimit RateLimit
}

type Server struct {
	gen      Generator
	accounts Accounts
	history  HistoryStore
	logos    LogoArchive
	logger   *slog.Logger
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(deps Deps) *gin.Engine {
	s := &Server{
		gen:      deps.Generator,
		accounts: deps.Accounts,
		history:  deps.History,
		logos:    deps.Logos,
		logger:   slog.Default().With("component", "api"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLoggingMiddleware(s.logger), CORSMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "VentureMind.AI backend running."})
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	limiter := newClientLimiter(deps.RateLimit)
	generation := r.Group("/api", s.optionalUser(), limiter.middleware())
	generation.POST("/chat", s.handleChat)
	generation.GET("/chat/stream", s.handleStream)

	auth := r.Group("/auth")
	auth.POST("/signup", s.handleSignup)
	auth.POST("/login", s.handleLogin)

	history := r.Group("/history", s.requireUser())
	history.GET("/", s.handleListHistory)
	history.GET("/:id", s.handleGetHistory)

	if deps.Agent != nil {
		r.GET("/.well-known/agent.json", deps.Agent.ServeAgentCard)
		r.POST("/a2a/venture", limiter.middleware(), deps.Agent.HandleVenture)
	}

	return r
}

// statusFor maps domain errors onto an HTTP status and client message.
func statusFor(err error) (int, string) {
	var (
		inputErr   *venture.InputError
		primaryErr *venture.PrimaryGenerationError
	)
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Reason
	case errors.As(err, &primaryErr):
		return http.StatusBadGateway, "Startup pack generation failed: " + primaryErr.Err.Error()
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, account.ErrUnauthorized):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, account.ErrMissingFields):
		return http.StatusBadRequest, "Email and password are required"
	case errors.Is(err, account.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes"
	case errors.Is(err, store.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal error: " + err.Error()
	}
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status, detail := statusFor(err)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
