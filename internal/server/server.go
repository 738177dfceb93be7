// Package server implements the collagefm HTTP API.
//
// Routes:
//
//	GET  /healthz                  liveness and build info
//	GET  /v1/layouts               template catalog
//	POST /v1/collages              render a collage (JSON pipeline options)
//	GET  /v1/collages/{id}         stored collage metadata
//	GET  /v1/collages/{id}/image   stored collage image
//
// Errors are JSON objects {"code": ..., "message": ...} whose HTTP status
// follows the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/collagefm/pkg/pipeline"
	"github.com/matzehuels/collagefm/pkg/store"
)

const (
	maxRequestBody  = 64 << 10
	renderTimeout   = 2 * time.Minute
	shutdownTimeout = 15 * time.Second
)

// Runner produces a collage. *pipeline.Runner satisfies it.
type Runner interface {
	Execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Server serves the HTTP API.
type Server struct {
	runner Runner
	store  store.Store
	logger *log.Logger
	ttl    time.Duration
}

// New creates a server. A nil logger discards output.
func New(runner Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{runner: runner, store: st, logger: logger, ttl: store.DefaultTTL}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/layouts", s.listLayouts)
		r.Route("/collages", func(r chi.Router) {
			r.Post("/", s.createCollage)
			r.Get("/{id}", s.getCollage)
			r.Get("/{id}/image", s.getCollageImage)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
