// Package server exposes the simulator over HTTP: algorithm and scenario
// listings, a simulate endpoint, and prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rtsched/rtsched/sim"
	"github.com/rtsched/rtsched/sim/scenario"
)

// DefaultRunTimeout bounds a single simulate request.
const DefaultRunTimeout = 10 * time.Second

// maxBodyBytes caps the simulate request body.
const maxBodyBytes = 4 << 20

// Config configures a Server.
type Config struct {
	RunTimeout time.Duration       // 0 means DefaultRunTimeout
	Scenarios  []scenario.Scenario // nil means scenario.Builtin()
}

// Server serves the scheduling simulator API.
type Server struct {
	cfg     Config
	metrics *Metrics
	mux     *http.ServeMux
}

// New creates a Server with its routes registered.
func New(cfg Config) *Server {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	if cfg.Scenarios == nil {
		cfg.Scenarios = scenario.Builtin()
	}
	s := &Server{cfg: cfg, metrics: NewMetrics(), mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /api/algorithms", s.handleAlgorithms)
	s.mux.HandleFunc("GET /api/scenarios", s.handleScenarios)
	s.mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	return s
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	logrus.WithFields(logrus.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"elapsed": time.Since(start),
	}).Info("request")
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Scheduling simulator API. See /api/algorithms, /api/scenarios, POST /api/simulate.",
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, _ *http.Request) {
	presets := sim.PolicyPresets()
	out := make([]AlgorithmInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, AlgorithmInfo{ID: p.Name, Name: p.Name, Description: p.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	out := make([]ScenarioInfo, 0, len(s.cfg.Scenarios))
	for _, sc := range s.cfg.Scenarios {
		out = append(out, ScenarioInfo{
			ID:          sc.Name,
			Name:        sc.Name,
			Description: sc.Description,
			NumMachines: sc.NumMachines,
			Tasks:       sc.Tasks,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.metrics.SimulationsTotal.WithLabelValues("unknown", "invalid").Inc()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return
	}

	alpha := sim.DefaultDPEAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	policy, err := sim.NewPolicy(req.Algorithm, alpha)
	if err != nil {
		label, status, outcome, detail := req.Algorithm, http.StatusUnprocessableEntity, "invalid", err.Error()
		if errors.Is(err, sim.ErrUnknownPolicy) {
			// Unknown names are not used as label values.
			label, status, outcome = "unknown", http.StatusNotFound, "not_found"
			detail = fmt.Sprintf("Algorithm '%s' not found", req.Algorithm)
		}
		s.metrics.SimulationsTotal.WithLabelValues(label, outcome).Inc()
		writeError(w, status, detail)
		return
	}

	cfg := sim.MachineConfig{NumMachines: req.NumMachines, Layout: req.Layout}
	simulator, err := sim.NewSimulator(req.Tasks, cfg, policy)
	if err != nil {
		s.metrics.SimulationsTotal.WithLabelValues(policy.Name(), "invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RunTimeout)
	defer cancel()
	runID := uuid.New().String()
	start := time.Now()
	res, err := simulator.Run(ctx)
	s.metrics.RunDuration.WithLabelValues(policy.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		s.metrics.SimulationsTotal.WithLabelValues(policy.Name(), "error").Inc()
		logrus.WithFields(logrus.Fields{"run_id": runID, "policy": policy.Name()}).Warnf("simulation failed: %v", err)
		writeError(w, status, err.Error())
		return
	}

	s.metrics.SimulationsTotal.WithLabelValues(policy.Name(), "ok").Inc()
	s.metrics.TasksSimulated.Add(float64(res.TotalTasks))
	s.metrics.DeadlineMisses.WithLabelValues(policy.Name(), sim.PriorityHigh.String()).
		Add(float64(res.HighPriority.Total - res.HighPriority.MetDeadline))
	s.metrics.DeadlineMisses.WithLabelValues(policy.Name(), sim.PriorityLow.String()).
		Add(float64(res.LowPriority.Total - res.LowPriority.MetDeadline))
	logrus.WithFields(logrus.Fields{
		"run_id":   runID,
		"policy":   policy.Name(),
		"tasks":    res.TotalTasks,
		"makespan": res.Makespan,
	}).Info("simulation complete")

	writeJSON(w, http.StatusOK, newSimulationResult(runID, res))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
