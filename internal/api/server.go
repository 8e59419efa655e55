// Package api exposes the journal as a local JSON API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/journal"
	"trading-journal-go/internal/session"
)

const migrateTimeout = time.Minute

// APIServer provides an HTTP interface for the journal.
type APIServer struct {
	server    *http.Server
	engine    *gin.Engine
	journal   *journal.Service
	session   *session.Holder
	logger    *zap.Logger
	startTime time.Time

	migrateMu sync.Mutex
	migrated  map[string]bool
	migrating sync.WaitGroup
}

// NewAPIServer creates the server and registers every route. It subscribes to
// the session holder so that the local fallback list is migrated once per
// signed-in user.
func NewAPIServer(cfg config.Server, svc *journal.Service, holder *session.Holder, logger *zap.Logger) *APIServer {
	engine := gin.New()
	s := &APIServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: engine,
		},
		engine:    engine,
		journal:   svc,
		session:   holder,
		logger:    logger.Named("api-server"),
		startTime: time.Now(),
		migrated:  make(map[string]bool),
	}

	engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	holder.Subscribe(s.onSession)
	return s
}

func (s *APIServer) routes() {
	api := s.engine.Group("/api")
	api.GET("/status", s.statusHandler)
	api.GET("/health", s.healthHandler)

	auth := &authHandler{session: s.session}
	auth.register(api)

	trades := &tradeHandler{journal: s.journal}
	trades.register(api.Group("", s.requireUser))
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server and waits for running migrations.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	err := s.server.Shutdown(ctx)
	s.migrating.Wait()
	return err
}

func (s *APIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

const userIDKey = "user_id"

// requireUser resolves the owner of the request. Without a backend every
// request belongs to the local user.
func (s *APIServer) requireUser(c *gin.Context) {
	if !s.journal.Remote() {
		c.Set(userIDKey, journal.LocalUserID)
		c.Next()
		return
	}
	userID, err := s.session.UserID()
	if err != nil {
		failErr(c, err)
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

func (s *APIServer) statusHandler(c *gin.Context) {
	ok(c, http.StatusOK, "", gin.H{
		"backend_configured": s.journal.Remote(),
		"session":            s.session.Snapshot(),
		"page_size":          s.journal.PageSize(),
		"start_time":         s.startTime.Format(time.RFC3339),
		"uptime":             time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *APIServer) healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *APIServer) onSession(snap session.Snapshot) {
	if !snap.Authenticated() || !s.journal.Remote() {
		return
	}
	userID := snap.User.ID

	s.migrateMu.Lock()
	if s.migrated[userID] {
		s.migrateMu.Unlock()
		return
	}
	s.migrated[userID] = true
	s.migrating.Add(1)
	s.migrateMu.Unlock()

	go func() {
		defer s.migrating.Done()
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		if _, err := s.journal.Migrate(ctx, userID); err != nil {
			s.logger.Error("Local trade migration failed", zap.String("user_id", userID), zap.Error(err))
		}
	}()
}
