package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ricardonunez-io/logsleuth/internal/report"
	"github.com/ricardonunez-io/logsleuth/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	DefaultListenAddr = ":8080"

	// AnalysisTimeout bounds a single analyze request, model round trips included.
	AnalysisTimeout = 3 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Analyzer runs one analysis for the given input.
type Analyzer interface {
	Analyze(ctx context.Context, input string) (report.Report, error)
}

type Config struct {
	ListenAddr      string
	AnalysisTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:      DefaultListenAddr,
		AnalysisTimeout: AnalysisTimeout,
	}
}

// Server exposes the analysis agent over HTTP.
type Server struct {
	analyzer Analyzer
	status   tools.StatusSource
	cfg      Config
	engine   *gin.Engine
}

func New(analyzer Analyzer, status tools.StatusSource, cfg Config) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = AnalysisTimeout
	}

	s := &Server{
		analyzer: analyzer,
		status:   status,
		cfg:      cfg,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	r.GET("/health", s.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/analyze", s.Analyze)
	v1.GET("/status/:service", s.Status)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.ListenAddr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
