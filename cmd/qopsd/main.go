// Command qopsd runs the QuantumGianni telemetry daemon: it samples the
// quantum-inspired score against a drifting synthetic load profile, records
// every evaluation, and serves the history over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/Gianni-inc/QuantumGianni/internal/api"
	"github.com/Gianni-inc/QuantumGianni/internal/persistence"
	"github.com/Gianni-inc/QuantumGianni/internal/profile"
	"github.com/Gianni-inc/QuantumGianni/internal/qops"
	"github.com/Gianni-inc/QuantumGianni/internal/sampler"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("QuantumGianni telemetry daemon")
	slog.Info("score constants",
		"qops", qops.QOPS,
		"tensor_bias", qops.TensorBias,
		"base", fmt.Sprintf("%+v", qops.DefaultParams()),
	)

	apiPort := envIntOrDefault("QOPSD_PORT", 8080)
	dbPath := envOrDefault("QOPSD_DB", "data/qops.db")
	intervalSec := envIntOrDefault("QOPSD_INTERVAL", 60)
	profileSeed := envInt64OrDefault("QOPSD_PROFILE_SEED", 0)
	adminKey := os.Getenv("QOPSD_ADMIN_KEY")

	if intervalSec < 1 {
		intervalSec = 1
	}

	// ── Run store ─────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Load profile ──────────────────────────────────────────────────
	cfg := profile.DefaultConfig()
	cfg.Seed = profileSeed
	gen := profile.New(cfg)
	slog.Info("load profile ready", "seed", gen.Seed(), "octaves", cfg.Octaves)

	if err := db.SaveMeta("profile_seed", strconv.FormatInt(gen.Seed(), 10)); err != nil {
		slog.Error("failed to record profile seed", "error", err)
	}

	// ── Sampler ───────────────────────────────────────────────────────
	base := qops.DefaultParams()
	smp := sampler.New(time.Duration(intervalSec)*time.Second, func(step uint64) {
		p := base
		p.LoadFactor = gen.At(step)

		start := time.Now()
		b := qops.Orchestrate(p)
		elapsed := time.Since(start)

		if err := db.SaveRun(persistence.NewRun(persistence.SourceSampler, p, b, elapsed)); err != nil {
			slog.Error("failed to record sample", "error", err, "step", step)
		}

		slog.Info("sample",
			"step", step,
			"load", fmt.Sprintf("%.4f", p.LoadFactor),
			"result", fmt.Sprintf("%.10f", b.Total),
			"took", elapsed,
		)
	})

	// ── HTTP API ──────────────────────────────────────────────────────
	if adminKey == "" {
		slog.Warn("QOPSD_ADMIN_KEY not set, sweep endpoint will be disabled")
	}

	apiServer := &api.Server{
		Store:    db,
		Profile:  gen,
		Sampler:  smp,
		Base:     base,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		smp.Stop()
	}()

	fmt.Printf("\n%s telemetry for %s: sampling every %ds, API on :%d\n",
		qops.SystemName, qops.SystemOwner, intervalSec, apiPort)
	fmt.Println("Sampling... (Ctrl+C to stop)")

	smp.Run()

	fmt.Println("Daemon stopped. Run history saved.")
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}
