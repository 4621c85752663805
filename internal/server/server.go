package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/guiyumin/narrify/internal/core/ai"
	"github.com/guiyumin/narrify/internal/core/store"
	"github.com/guiyumin/narrify/internal/core/version"
)

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// SummarizeRequest is the request body for POST /api/summarize
type SummarizeRequest struct {
	VideoID string `json:"video_id"`
}

// Pipeline produces a stored summary for one video.
type Pipeline interface {
	Summarize(ctx context.Context, videoID string) (*ai.Outcome, error)
}

// Records lists stored summaries.
type Records interface {
	List(ctx context.Context) ([]store.Entry, error)
}

// Options configures a Server.
type Options struct {
	Port           int
	APIKey         string
	AllowedOrigins []string

	// Pipeline may be nil when no AI provider is configured; summarize
	// requests then fail with 503 and Unavailable as the message.
	Pipeline    Pipeline
	Unavailable error
	Records     Records
	Logger      *slog.Logger
}

// Server is the HTTP server for narrify
type Server struct {
	port        int
	apiKey      string
	pipeline    Pipeline
	unavailable error
	records     Records
	logger      *slog.Logger
	server      *http.Server
	engine      *gin.Engine
}

// NewServer creates a new HTTP server with its routes registered.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:        opts.Port,
		apiKey:      opts.APIKey,
		pipeline:    opts.Pipeline,
		unavailable: opts.Unavailable,
		records:     opts.Records,
		logger:      logger,
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())
	if mw := corsMiddleware(opts.AllowedOrigins, logger); mw != nil {
		s.engine.Use(mw)
	}
	if s.apiKey != "" {
		s.engine.Use(s.authMiddleware())
	}

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/summarize", s.handleSummarize)
	api.GET("/records", s.handleRecords)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "not found",
		})
	})

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.engine,
		ReadTimeout: 30 * time.Second,
		// Transcription can take minutes
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting narrify server", slog.Int("port", s.port), slog.String("version", version.Version))
	if s.apiKey != "" {
		s.logger.Info("API key authentication enabled")
	}
	if s.pipeline == nil {
		s.logger.Warn("summarization disabled", slog.Any("reason", s.unavailable))
	}

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Middleware

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Health endpoint and CORS preflights don't require auth
		if path == "/api/health" || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if !strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") != s.apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Code:    401,
				Data:    nil,
				Message: "invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}

// corsMiddleware allows GET and POST from the configured origins. It returns
// nil when no usable origin is configured.
func corsMiddleware(origins []string, logger *slog.Logger) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "*":
			cfg.AllowAllOrigins = true
		case strings.HasPrefix(origin, "http://"), strings.HasPrefix(origin, "https://"):
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		case origin != "":
			logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
		}
	}

	if cfg.AllowAllOrigins {
		// Wildcard origins cannot carry credentials
		cfg.AllowOrigins = nil
		cfg.AllowCredentials = false
	} else if len(cfg.AllowOrigins) == 0 {
		return nil
	}
	return cors.New(cfg)
}

// Handlers

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"status":        "ok",
			"version":       version.Version,
			"summarization": s.pipeline != nil,
		},
		Message: "everything is good",
	})
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "invalid request body",
		})
		return
	}

	if s.pipeline == nil {
		msg := "summarization is not configured"
		if s.unavailable != nil {
			msg = s.unavailable.Error()
		}
		c.JSON(http.StatusServiceUnavailable, Response{
			Code:    503,
			Data:    nil,
			Message: msg,
		})
		return
	}

	out, err := s.pipeline.Summarize(c.Request.Context(), req.VideoID)
	if err != nil {
		status := ai.StatusOf(err)
		c.JSON(status, Response{
			Code:    status,
			Data:    nil,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"video_id": out.Identifier,
			"source":   out.Source,
			"summary":  out.Summary,
			"file":     out.StoragePath,
		},
		Message: "summary created",
	})
}

func (s *Server) handleRecords(c *gin.Context) {
	entries, err := s.records.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"records": entries,
		},
		Message: fmt.Sprintf("%d records found", len(entries)),
	})
}
