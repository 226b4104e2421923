// Command quantumgianni evaluates the quantum-inspired system output once
// and prints it. The plain invocation writes exactly three lines to stdout:
//
//	System Name: QuantumGianni
//	System Owner: Gianni-inc
//	Quantum-Inspired System Output: <value with ten fractional digits>
//
// Environment variables extend that behavior without changing the default
// run: QOPS_PARALLEL fans the series kernels out over N workers, QOPS_DB
// records the evaluation in a run history database, and QOPS_HISTORY lists
// the N most recent recorded runs instead of computing a new one.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Gianni-inc/QuantumGianni/internal/persistence"
	"github.com/Gianni-inc/QuantumGianni/internal/qops"
)

func main() {
	// Diagnostics go to stderr so the three output lines stay clean.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	dbPath := os.Getenv("QOPS_DB")

	if n := envIntOrDefault("QOPS_HISTORY", 0); n > 0 {
		if dbPath == "" {
			slog.Error("QOPS_HISTORY requires QOPS_DB to point at a run database")
			os.Exit(1)
		}
		if err := printHistory(dbPath, n); err != nil {
			slog.Error("failed to read history", "error", err)
			os.Exit(1)
		}
		return
	}

	p := qops.DefaultParams()
	workers := envIntOrDefault("QOPS_PARALLEL", 0)

	start := time.Now()
	var b qops.Breakdown
	if workers > 0 {
		b = qops.OrchestrateParallel(p, workers)
	} else {
		b = qops.Orchestrate(p)
	}
	elapsed := time.Since(start)

	printReport(os.Stdout, b)

	if dbPath != "" {
		db, err := persistence.Open(dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.SaveRun(persistence.NewRun(persistence.SourceCLI, p, b, elapsed)); err != nil {
			slog.Error("failed to record run", "error", err)
			os.Exit(1)
		}
	}
}

// printReport writes the three output lines of a plain invocation.
func printReport(w io.Writer, b qops.Breakdown) {
	fmt.Fprintf(w, "System Name: %s\n", qops.SystemName)
	fmt.Fprintf(w, "System Owner: %s\n", qops.SystemOwner)
	fmt.Fprintf(w, "Quantum-Inspired System Output: %.10f\n", b.Total)
}

// printHistory lists the n most recent recorded runs, newest first.
func printHistory(dbPath string, n int) error {
	db, err := persistence.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %-16s  %-7s  load=%.4f  result=%.10f\n",
			r.ID,
			humanize.Time(time.Unix(r.CreatedAt, 0)),
			r.Source,
			r.LoadFactor,
			r.Result,
		)
	}
	return nil
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
