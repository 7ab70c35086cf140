// Package api exposes the diagnostics surface of the extraction engine:
// classification probes, dry-run extraction, and row appends with operator
// issuer overrides.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Verxtics/termsheet-extractor/internal/docsource"
	"github.com/Verxtics/termsheet-extractor/internal/pipeline"
)

// Server hosts the HTTP diagnostics API around one pipeline.
type Server struct {
	engine  *gin.Engine
	pipe    *pipeline.Pipeline
	log     *slog.Logger
	limiter *rate.Limiter
}

// NewServer builds the router. rps bounds request throughput across all
// endpoints; metrics may be nil to disable the /metrics endpoint.
func NewServer(pipe *pipeline.Pipeline, log *slog.Logger, metrics *prometheus.Registry, rps float64) *Server {
	s := &Server{
		pipe:    pipe,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLog(), s.rateLimit())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(metrics, promhttp.HandlerOpts{})))
	}

	v1 := engine.Group("/v1")
	v1.POST("/classify", s.handleClassify)
	v1.POST("/extract", s.handleExtract)
	v1.POST("/rows", s.handleRows)

	s.engine = engine
	return s
}

// Handler returns the http.Handler for serving or tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)))
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type classifyRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issuer": s.pipe.Classify(req.Text)})
}

type documentRequest struct {
	Source string       `json:"source"`
	Text   string       `json:"text"`
	Tables [][][]string `json:"tables"`
	// Issuer overrides classification when set.
	Issuer string `json:"issuer"`
}

func (r *documentRequest) document() *docsource.Document {
	src := r.Source
	if src == "" {
		src = "api-request"
	}
	return &docsource.Document{Source: src, Text: r.Text, Tables: r.Tables}
}

func (r *documentRequest) options(extra ...pipeline.Option) []pipeline.Option {
	opts := extra
	if r.Issuer != "" {
		opts = append(opts, pipeline.WithIssuer(r.Issuer))
	}
	return opts
}

// handleExtract runs the pipeline without touching the sink.
func (s *Server) handleExtract(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.pipe.Run(c.Request.Context(), req.document(), req.options(pipeline.DryRun())...)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": res.RunID.String(),
		"issuer": res.IssuerKey,
		"fields": res.Fields,
	})
}

// handleRows runs the full pipeline and appends the assembled row.
func (s *Server) handleRows(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.pipe.Run(c.Request.Context(), req.document(), req.options()...)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"run_id": res.RunID.String(),
		"issuer": res.IssuerKey,
		"cells":  res.Row.Cells(),
	})
}
