package benchmark

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(dir, "context.db")
	cfg.EventLogPath = filepath.Join(dir, "events.db")
	cfg.Dimensions = 32

	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// TestRunSeedsAndTimes verifies the benchmark produces timings for every
// operation over the requested corpus size.
func TestRunSeedsAndTimes(t *testing.T) {
	e := newTestEngine(t)

	result, err := Run(e, 20)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.SeededEntries != 20 {
		t.Errorf("Expected 20 seeded entries, got %d", result.SeededEntries)
	}
	if len(result.Operations) != 3 {
		t.Fatalf("Expected 3 timed operations, got %d", len(result.Operations))
	}
	for _, op := range result.Operations {
		if op.Runs != Iterations {
			t.Errorf("Expected %d runs for %s, got %d", Iterations, op.Operation, op.Runs)
		}
		if op.Total < op.Average {
			t.Errorf("Expected total >= average for %s", op.Operation)
		}
	}

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 20 {
		t.Errorf("Expected 20 stored entries after seeding, got %d", stats.Total)
	}
}

// TestRunDefaultCount verifies a non-positive count falls back to the default.
func TestRunDefaultCount(t *testing.T) {
	e := newTestEngine(t)

	result, err := Run(e, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.SeededEntries != 100 {
		t.Errorf("Expected default 100 seeded entries, got %d", result.SeededEntries)
	}
}

// TestFormatResult verifies the report names every operation.
func TestFormatResult(t *testing.T) {
	e := newTestEngine(t)

	result, err := Run(e, 10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := FormatResult(result)
	for _, op := range result.Operations {
		if !strings.Contains(out, op.Operation) {
			t.Errorf("Expected %q in formatted output", op.Operation)
		}
	}
}
