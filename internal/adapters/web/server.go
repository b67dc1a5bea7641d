// Package web serves the chat JSON API and Prometheus metrics over HTTP using gin.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/corey/chatmon/internal/adapters/socket"
	"github.com/corey/chatmon/internal/logger"
	"github.com/corey/chatmon/internal/metrics"
	"github.com/corey/chatmon/internal/ports"
)

// Server serves the JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	metrics  *metrics.Metrics
	router   *gin.Engine
	listener net.Listener
	httpSrv  *http.Server
	stopOnce sync.Once

	addrFilePath string // .chatmon/run/http.addr
}

// askRequest is the body of POST /api/ask.
type askRequest struct {
	Query string `json:"query"`
}

// NewServer creates an HTTP server for the API. m may be nil, in which case
// /metrics is not mounted. addrFilePath, if set, receives the bound address.
func NewServer(queries socket.AppQueries, m *metrics.Metrics, addrFilePath string) *Server {
	s := &Server{
		queries:      queries,
		metrics:      m,
		addrFilePath: addrFilePath,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), observe(s.metrics))

	api := r.Group("/api")
	api.POST("/ask", s.handleAsk)
	api.GET("/health", s.handleHealth)
	api.GET("/stats", s.handleStats)
	api.GET("/unanswered", s.handleUnanswered)
	api.POST("/reload", s.handleReload)

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return r
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on addr (host:port; port 0 picks a free one) and
// writes the bound address to the address file.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Write address file for discovery
	if s.addrFilePath != "" {
		os.WriteFile(s.addrFilePath, []byte(s.Addr()), 0644)
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("http server stopped", zap.Error(err))
		}
	}()
	logger.Log.Info("http server listening", zap.String("addr", s.Addr()))
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.addrFilePath != "" {
			os.Remove(s.addrFilePath)
		}
	})
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the API base URL.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.queries.Ask(c.Request.Context(), req.Query)
	if errors.Is(err, ports.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.queries.Health())
}

func (s *Server) handleStats(c *gin.Context) {
	top, ok := intQuery(c, "top", 10)
	if !ok {
		return
	}
	result, err := s.queries.LookupStats(top)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleUnanswered(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 20)
	if !ok {
		return
	}
	result, err := s.queries.Unanswered(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleReload(c *gin.Context) {
	result, err := s.queries.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// intQuery reads a non-negative integer query parameter. On a bad value it
// writes a 400 and returns ok=false.
func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be a non-negative integer", name)})
		return 0, false
	}
	return n, true
}
