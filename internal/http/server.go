// Package http exposes the engine's operations to the agent layer over a
// small REST surface, plus health and Prometheus metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunepilot/internal/core"
)

// Commands is the engine surface the server fronts. Every operation
// returns a speakable status string, never an error.
type Commands interface {
	PlayQuery(ctx context.Context, query string) string
	Pause(ctx context.Context) string
	SkipNext(ctx context.Context) string
	PlayPlaylist(ctx context.Context, name string) string
}

type Server struct {
	config   *core.ServerConfig
	commands Commands
	logger   *zap.Logger
	server   *http.Server
	metrics  *Metrics
}

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunepilot_requests_total",
				Help: "Total number of control requests processed",
			},
			[]string{"op"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tunepilot_request_duration_seconds",
				Help:    "Time spent handling control requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunepilot_requests_in_flight",
				Help: "Number of control requests currently being handled",
			},
		),
	}

	reg.MustRegister(
		metrics.RequestsTotal,
		metrics.RequestDuration,
		metrics.InFlight,
	)

	return metrics
}

func NewServer(config *core.ServerConfig, commands Commands, logger *zap.Logger) *Server {
	return newServer(config, commands, logger, prometheus.DefaultRegisterer, promhttp.Handler())
}

func newServer(config *core.ServerConfig, commands Commands, logger *zap.Logger,
	reg prometheus.Registerer, metricsHandler http.Handler) *Server {
	s := &Server{
		config:   config,
		commands: commands,
		logger:   logger,
		metrics:  newMetrics(reg),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "tunepilot"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "service": "tunepilot"})
	})
	mux.Handle("/metrics", metricsHandler)

	mux.HandleFunc("/v1/play", s.handlePlay)
	mux.HandleFunc("/v1/pause", s.handlePause)
	mux.HandleFunc("/v1/next", s.handleNext)
	mux.HandleFunc("/v1/playlist", s.handlePlaylist)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

type playRequest struct {
	Query string `json:"query"`
}

type playlistRequest struct {
	Name string `json:"name"`
}

type statusResponse struct {
	Message string `json:"message"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.handle(w, r, "play", func(ctx context.Context) (string, error) {
		var req playRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		if strings.TrimSpace(req.Query) == "" {
			return "", fmt.Errorf("query must not be empty")
		}
		return s.commands.PlayQuery(ctx, req.Query), nil
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handle(w, r, "pause", func(ctx context.Context) (string, error) {
		return s.commands.Pause(ctx), nil
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.handle(w, r, "next", func(ctx context.Context) (string, error) {
		return s.commands.SkipNext(ctx), nil
	})
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	s.handle(w, r, "playlist", func(ctx context.Context) (string, error) {
		var req playlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		if strings.TrimSpace(req.Name) == "" {
			return "", fmt.Errorf("name must not be empty")
		}
		return s.commands.PlayPlaylist(ctx, req.Name), nil
	})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context) (string, error)) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	s.metrics.InFlight.Inc()
	defer s.metrics.InFlight.Dec()

	start := time.Now()
	message, err := fn(r.Context())
	s.metrics.RequestsTotal.WithLabelValues(op).Inc()
	s.metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Warn("bad control request",
			zap.String("op", op),
			zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
