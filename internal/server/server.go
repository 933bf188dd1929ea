// Package server hosts the review dashboard and its JSON API.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardwatch-dev/cardwatch/internal/batch"
	"github.com/cardwatch-dev/cardwatch/internal/buildinfo"
	"github.com/cardwatch-dev/cardwatch/internal/model"
	"github.com/cardwatch-dev/cardwatch/internal/review"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves one loaded batch and the review flow over HTTP.
type Server struct {
	batch   *batch.Batch
	reviews *review.Service
	logger  *slog.Logger
	engine  *gin.Engine
}

// New builds the router.
func New(b *batch.Batch, reviews *review.Service, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		batch:   b,
		reviews: reviews,
		logger:  logger,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(tmpl)
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	s.engine.GET("/", s.page)
	s.engine.POST("/process", s.processForm)

	api := s.engine.Group("/api")
	api.GET("/transactions", s.listTransactions)
	api.GET("/transactions/:id", s.getTransaction)
	api.POST("/transactions/:id/process", s.processTransaction)
	api.GET("/flagged", s.listFlagged)
	api.GET("/flagged/export", s.exportFlagged)
	api.GET("/flagged/:id", s.getFlagged)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"time":         time.Now().UTC().Format(time.RFC3339),
		"version":      buildinfo.Version,
		"transactions": s.batch.Len(),
		"flagged":      s.reviews.Board().Len(),
	})
}

var templateFuncs = template.FuncMap{
	"pct": func(p float64) string { return fmt.Sprintf("%.1f%%", p*100) },
	"toggle": func(cfg model.SortConfig, key string) model.SortConfig {
		return cfg.Toggle(model.SortKey(key))
	},
	"datetime": func(t time.Time) string { return t.Format(model.DateLayout) },
}
