// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eivy/irgen/metrics"
)

// maxRequestSize bounds the body of a conversion request.
const maxRequestSize = 1 << 20

// Handler converts a JSON encoded request into output lines.
type Handler interface {
	HandleRequest(ctx context.Context, payload []byte) ([]string, error)
}

type response struct {
	Lines []string `json:"lines,omitempty"`
	Error string   `json:"error,omitempty"`
}

type options struct {
	Log       *zap.SugaredLogger
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer
}

func newOptions() *options {
	return &options{
		Log:      zap.NewNop().Sugar(),
		Gatherer: prometheus.DefaultGatherer,
	}
}

// Option configures a Server.
type Option func(*options)

// WithLog sets the logger.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithCollector records request counts and durations in collector.
func WithCollector(collector *metrics.Collector) Option {
	return func(o *options) {
		o.Collector = collector
	}
}

// WithGatherer sets the registry served on the metrics path.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(o *options) {
		o.Gatherer = gatherer
	}
}

// Server serves POST /convert and the Prometheus metrics.
type Server struct {
	cfg     metrics.Config
	handler Handler
	mux     *http.ServeMux
	log     *zap.SugaredLogger
}

// NewServer creates a new Server.
func NewServer(cfg metrics.Config, handler Handler, opts ...Option) *Server {
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Server{
		cfg:     cfg,
		handler: handler,
		mux:     http.NewServeMux(),
		log:     o.Log,
	}

	var convert http.Handler = http.HandlerFunc(s.handleConvert)
	if o.Collector != nil {
		convert = metrics.Instrument(o.Collector, "/convert", convert)
	}
	s.mux.Handle("/convert", convert)
	s.mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.log.Infow("shutting down HTTP server", zap.String("addr", s.cfg.ListenAddr))
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Warnw("failed to shut down HTTP server", zap.Error(err))
		}
	}()

	s.log.Infow("serving conversions", zap.String("addr", s.cfg.ListenAddr), zap.String("metrics", s.cfg.MetricsPath))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeJSON(w, http.StatusMethodNotAllowed, response{Error: "method not allowed"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, response{Error: err.Error()})
		return
	}

	lines, err := s.handler.HandleRequest(r.Context(), payload)
	if err != nil {
		s.log.Debugw("conversion failed", zap.Error(err))
		s.writeJSON(w, http.StatusBadRequest, response{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, response{Lines: lines})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("failed to write response", zap.Error(err))
	}
}
