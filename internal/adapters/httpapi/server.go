// Package httpapi exposes the trade service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"optionTracker/internal/app"
	"optionTracker/internal/ports"
)

// Prices leave the API as JSON numbers, matching how clients submit them.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MonitorStatus reports whether the background monitor is running.
type MonitorStatus interface {
	Running() bool
}

// Config describes the server dependencies.
type Config struct {
	Addr    string
	Service *app.TradeService
	Monitor MonitorStatus // Optional
	Logger  ports.Logger
}

// Server serves the /trades API.
type Server struct {
	addr    string
	svc     *app.TradeService
	monitor MonitorStatus
	logger  ports.Logger
	router  *gin.Engine
}

// NewServer builds the HTTP server and registers its routes.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Service == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("http server requires a service and a logger: %w", ports.ErrConfigurationError)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:    cfg.Addr,
		svc:     cfg.Service,
		monitor: cfg.Monitor,
		logger:  cfg.Logger,
		router:  router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	trades := s.router.Group("/trades")
	trades.GET("", s.handleList)
	trades.POST("", s.handleCreate)
	trades.GET("/:id", s.handleGet)
	trades.PUT("/:id", s.handleUpdate)
	trades.DELETE("/:id", s.handleDelete)
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": s.addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info(context.Background(), "HTTP server stopped")
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if s.monitor != nil {
		body["monitor_running"] = s.monitor.Running()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleList(c *gin.Context) {
	q := app.ListQuery{Status: c.Query("status")}
	if raw := c.Query("recent_hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "recent_hours must be an integer"})
			return
		}
		q.RecentHours = hours
	}
	trades, err := s.svc.ListTrades(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

func (s *Server) handleCreate(c *gin.Context) {
	var in app.CreateTradeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid trade payload: " + err.Error()})
		return
	}
	id, err := s.svc.CreateTrade(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	trade, err := s.svc.GetTrade(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in app.UpdateStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid update payload: " + err.Error()})
		return
	}
	status, err := s.svc.UpdateStatus(c.Request.Context(), id, in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.svc.DeleteTrade(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "trade id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// writeError maps core errors to status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ports.ErrInvalidTransition):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), err, "Request failed", map[string]interface{}{"path": c.FullPath(), "method": c.Request.Method})
		c.JSON(status, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}
