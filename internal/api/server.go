// Package api provides the HTTP API of the telemetry daemon.
// GET endpoints are public (read-only observation of the score and its
// history). POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Gianni-inc/QuantumGianni/internal/persistence"
	"github.com/Gianni-inc/QuantumGianni/internal/profile"
	"github.com/Gianni-inc/QuantumGianni/internal/qops"
	"github.com/Gianni-inc/QuantumGianni/internal/sampler"
	"github.com/Gianni-inc/QuantumGianni/internal/sweep"
)

// Request ceilings. Computation cost grows with the loop bounds, so the
// public endpoints clamp whatever the query string asks for. The tensor
// kernel evaluates n² factors, so its bound is the square root of the
// linear kernels' ceiling.
const (
	maxLoopBound     = 1_000_000
	maxTensorDim     = 1_000
	maxProfilePoints = 10_000
	maxSweepSteps    = 10_000
	maxSweepWorkers  = 64
)

// Server serves the score, the load profile, and the run history over HTTP.
type Server struct {
	Store    *persistence.DB
	Profile  *profile.Generator
	Sampler  *sampler.Sampler
	Base     qops.Params
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	started time.Time
}

// Handler builds the route table. Split out of Start so tests can drive the
// full middleware stack through httptest.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}

	// Rate limiters for computation-heavy endpoints.
	computeLimiter := NewRateLimiter(120, time.Minute)
	sweepLimiter := NewRateLimiter(10, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/compute", RateLimitMiddleware(computeLimiter, s.handleCompute))
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/profile", s.handleProfile)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/sweep", RateLimitMiddleware(sweepLimiter, s.adminOnly(s.handleSweep)))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	handler := s.Handler()
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed dashboard origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a POST-only handler with bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no QOPSD_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	step := uint64(0)
	if s.Sampler != nil {
		step = s.Sampler.Step()
	}

	status := map[string]any{
		"name":         qops.SystemName,
		"owner":        qops.SystemOwner,
		"qops":         float64(qops.QOPS),
		"started":      humanize.Time(s.started),
		"step":         step,
		"profile_seed": s.Profile.Seed(),
		"current_load": s.Profile.At(step),
		"base_params":  s.Base,
	}
	if s.Sampler != nil {
		status["interval"] = s.Sampler.Interval.String()
	}

	if s.Store != nil {
		if n, err := s.Store.CountRuns(); err == nil {
			status["runs"] = n
		} else {
			slog.Error("run count query failed", "error", err)
		}
	}

	writeJSON(w, status)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	p := s.Base
	floatParam(r, "x", &p.X)
	floatParam(r, "t", &p.T)
	intParam(r, "depth", &p.Depth, maxLoopBound)
	intParam(r, "dimensions", &p.Dimensions, maxTensorDim)
	intParam(r, "layers", &p.Layers, maxLoopBound)
	floatParam(r, "load_factor", &p.LoadFactor)

	workers := 0
	intParam(r, "workers", &workers, maxSweepWorkers)

	start := time.Now()
	var b qops.Breakdown
	if workers > 1 {
		b = qops.OrchestrateParallel(p, workers)
	} else {
		b = qops.Orchestrate(p)
	}
	elapsed := time.Since(start)

	writeJSON(w, map[string]any{
		"params": jsonParams(p),
		"breakdown": map[string]any{
			"recursive_sum":   jsonFloat(b.Recursive),
			"tensor_det":      jsonFloat(b.Tensor),
			"feedback_series": jsonFloat(b.Feedback),
			"load_scale":      jsonFloat(b.Scale),
		},
		"result":      jsonFloat(b.Total),
		"formatted":   fmt.Sprintf("%.10f", b.Total),
		"duration_us": elapsed.Microseconds(),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	runs, err := s.Store.RecentRuns(limit)
	if err != nil {
		slog.Error("run history query failed", "error", err)
		// Return empty array instead of error; table may not have data yet.
		writeJSON(w, []persistence.Run{})
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var from uint64
	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.ParseUint(f, 10, 64); err == nil {
			from = v
		}
	}
	steps := 60
	if v := r.URL.Query().Get("steps"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxProfilePoints {
			steps = n
		}
	}

	writeJSON(w, map[string]any{
		"seed":   s.Profile.Seed(),
		"from":   from,
		"points": s.Profile.Slice(from, steps),
	})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From    uint64 `json:"from"`
		Steps   int    `json:"steps"`
		Workers int    `json:"workers"`
		Record  bool   `json:"record"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Steps <= 0 {
		req.Steps = 60
	}
	if req.Steps > maxSweepSteps {
		http.Error(w, fmt.Sprintf("steps must be 1-%d", maxSweepSteps), http.StatusBadRequest)
		return
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.Workers > maxSweepWorkers {
		req.Workers = maxSweepWorkers
	}

	start := time.Now()
	res, err := sweep.Run(r.Context(), s.Base, s.Profile, req.From, req.Steps, req.Workers)
	if err != nil {
		slog.Error("sweep failed", "error", err)
		http.Error(w, "sweep failed", http.StatusInternalServerError)
		return
	}
	elapsed := time.Since(start)

	recorded := 0
	if req.Record && s.Store != nil {
		runs := make([]persistence.Run, 0, len(res.Samples))
		for _, sm := range res.Samples {
			p := s.Base
			p.LoadFactor = sm.LoadFactor
			runs = append(runs, persistence.NewRun(persistence.SourceSweep, p, sm.Breakdown, 0))
		}
		if err := s.Store.SaveRuns(runs); err != nil {
			slog.Error("sweep recording failed", "error", err)
		} else {
			recorded = len(runs)
		}
	}

	slog.Info("sweep finished",
		"from", req.From, "steps", req.Steps, "workers", req.Workers,
		"recorded", recorded, "took", elapsed)

	writeJSON(w, map[string]any{
		"from":    req.From,
		"steps":   req.Steps,
		"workers": req.Workers,
		"summary": map[string]any{
			"min":  jsonFloat(res.Min),
			"max":  jsonFloat(res.Max),
			"mean": jsonFloat(res.Mean),
		},
		"samples":     res.Samples,
		"recorded":    recorded,
		"duration_us": elapsed.Microseconds(),
	})
}

// floatParam overwrites dst when the query carries a parseable value.
func floatParam(r *http.Request, key string, dst *float64) {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// intParam overwrites dst when the query carries a value in [0, limit].
func intParam(r *http.Request, key string, dst *int, limit int) {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= limit {
			*dst = n
		}
	}
}

// jsonFloat keeps NaN and ±Inf representable: encoding/json rejects them as
// numbers, so degenerate scores travel as strings instead of killing the
// whole response.
func jsonFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

// jsonParams mirrors Params with the float fields routed through jsonFloat.
// strconv.ParseFloat accepts "NaN" and "Inf" overrides, and echoing those
// back raw would abort the encoder mid-response.
func jsonParams(p qops.Params) map[string]any {
	return map[string]any{
		"x":           jsonFloat(p.X),
		"t":           jsonFloat(p.T),
		"depth":       p.Depth,
		"dimensions":  p.Dimensions,
		"layers":      p.Layers,
		"load_factor": jsonFloat(p.LoadFactor),
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
