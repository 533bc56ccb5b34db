package engine

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/learning"
	"github.com/contextweave/contextweave/internal/prompt"
	"github.com/contextweave/contextweave/internal/retriever"
	"github.com/contextweave/contextweave/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(dir, "context.db")
	cfg.EventLogPath = filepath.Join(dir, "events.db")
	cfg.Dimensions = 32
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// TestAddAndStats verifies the wired add path end to end.
func TestAddAndStats(t *testing.T) {
	e := newTestEngine(t, testConfig(t))

	if _, err := e.AddContext("goroutines are cheap", "technical", store.AddOptions{}); err != nil {
		t.Fatalf("AddContext failed: %v", err)
	}

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Expected 1 entry, got %d", stats.Total)
	}
	if stats.IndexSize != 1 {
		t.Errorf("Expected index size 1, got %d", stats.IndexSize)
	}
}

// TestLearnThenFindSimilar runs the feedback roundtrip: a learned interaction
// must be retrievable immediately afterward.
func TestLearnThenFindSimilar(t *testing.T) {
	e := newTestEngine(t, testConfig(t))

	e.Learn("How do I scale?", "Enhanced: How do I scale? Add replicas.", 0.9, "ops")

	entries, err := e.FindSimilar("scale", retriever.Options{
		ContextType:   "ops",
		Limit:         5,
		MinSimilarity: -1,
	})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Expected the learned message to be retrievable")
	}

	found := false
	for _, entry := range entries {
		if strings.Contains(entry.Text, "How do I scale?") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected learned text in results, got %+v", entries)
	}
}

// TestEnhanceRoundtrip verifies add then enhance produces an augmented prompt.
func TestEnhanceRoundtrip(t *testing.T) {
	e := newTestEngine(t, testConfig(t))

	if _, err := e.AddContext("prefer connection pooling", "perf", store.AddOptions{}); err != nil {
		t.Fatalf("AddContext failed: %v", err)
	}

	result := e.Enhance("You are a helpful assistant.", "pooling", "perf", -1)
	if result.Status != prompt.StatusEnhanced {
		t.Fatalf("Expected StatusEnhanced, got %q", result.Status)
	}
	if !strings.Contains(result.Prompt, "prefer connection pooling") {
		t.Error("Expected stored context in the enhanced prompt")
	}
}

// TestEnhanceDefaultThreshold verifies the NaN sentinel picks up the
// configured default and yields passthrough for unrelated content.
func TestEnhanceDefaultThreshold(t *testing.T) {
	e := newTestEngine(t, testConfig(t))

	base := "You are a helpful assistant."
	result := e.Enhance(base, "anything at all", "", math.NaN())
	if result.Status != prompt.StatusNoContext {
		t.Errorf("Expected StatusNoContext on empty store, got %q", result.Status)
	}
	if result.Prompt != base {
		t.Errorf("Expected base prompt unchanged, got %q", result.Prompt)
	}
}

// TestResolveThreshold verifies only NaN maps to the configured floor; zero
// and negative values are honored as given.
func TestResolveThreshold(t *testing.T) {
	cfg := testConfig(t)
	cfg.SimilarityThreshold = 0.7
	e := newTestEngine(t, cfg)

	if got := e.resolveThreshold(math.NaN()); got != 0.7 {
		t.Errorf("Expected NaN to resolve to 0.7, got %g", got)
	}
	if got := e.resolveThreshold(0); got != 0 {
		t.Errorf("Expected explicit 0 floor to be honored, got %g", got)
	}
	if got := e.resolveThreshold(-1); got != -1 {
		t.Errorf("Expected negative threshold to pass through, got %g", got)
	}
	if got := e.resolveThreshold(0.25); got != 0.25 {
		t.Errorf("Expected explicit threshold to pass through, got %g", got)
	}
}

// TestRecordOutcomeAndAnalyze verifies the tracker feeds the analyzer.
func TestRecordOutcomeAndAnalyze(t *testing.T) {
	e := newTestEngine(t, testConfig(t))

	sat := 0.8
	id := e.RecordOutcome(learning.PerformanceEvent{
		UserMessage:      "how do I scale?",
		ContextSize:      200,
		ResponseTimeMs:   700,
		UserSatisfaction: &sat,
	})
	if id == "" {
		t.Fatal("Expected a generated event id")
	}

	// Background flush runs every 50ms.
	time.Sleep(200 * time.Millisecond)

	analysis, err := e.Analyze(0)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if analysis.Events != 1 {
		t.Errorf("Expected 1 analyzed event, got %d", analysis.Events)
	}
	if analysis.MeanContextSize != 200 {
		t.Errorf("Expected mean context size 200, got %g", analysis.MeanContextSize)
	}
}

// TestOutcomeLookupAndLateScore verifies a recorded event can be looked up
// once flushed and that re-recording the same id merges a late score.
func TestOutcomeLookupAndLateScore(t *testing.T) {
	e := newTestEngine(t, testConfig(t))

	id := e.RecordOutcome(learning.PerformanceEvent{
		UserMessage: "how do I cache?",
		ContextSize: 150,
	})

	// Background flush runs every 50ms.
	time.Sleep(200 * time.Millisecond)
	if e.PendingOutcomes() != 0 {
		t.Errorf("Expected empty queue after flush, got %d", e.PendingOutcomes())
	}

	event, err := e.Outcome(id)
	if err != nil {
		t.Fatalf("Outcome failed: %v", err)
	}
	if event == nil {
		t.Fatal("Expected the flushed event to be retrievable")
	}
	if event.UserMessage != "how do I cache?" || event.ContextSize != 150 {
		t.Errorf("Event not preserved: %+v", event)
	}
	if event.UserSatisfaction != nil {
		t.Errorf("Expected no satisfaction score yet, got %v", *event.UserSatisfaction)
	}

	sat := 0.9
	updated := *event
	updated.UserSatisfaction = &sat
	e.RecordOutcome(updated)
	time.Sleep(200 * time.Millisecond)

	event, err = e.Outcome(id)
	if err != nil {
		t.Fatalf("Outcome after update failed: %v", err)
	}
	if event.UserSatisfaction == nil || *event.UserSatisfaction != 0.9 {
		t.Errorf("Expected late satisfaction score 0.9, got %+v", event.UserSatisfaction)
	}

	missing, err := e.Outcome("no-such-event")
	if err != nil {
		t.Fatalf("Outcome for unknown id failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown id, got %+v", missing)
	}
}

// TestIndexRehydration verifies persisted entries stay searchable across
// engine restarts.
func TestIndexRehydration(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := first.AddContext("durable knowledge", "notes", store.AddOptions{}); err != nil {
		t.Fatalf("AddContext failed: %v", err)
	}
	first.Close()

	second := newTestEngine(t, cfg)
	entries, err := second.FindSimilar("durable knowledge", retriever.Options{
		Limit:         5,
		MinSimilarity: -1,
	})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "durable knowledge" {
		t.Errorf("Expected the persisted entry after restart, got %+v", entries)
	}
}

// TestClear verifies full clears reset both store and index.
func TestClear(t *testing.T) {
	e := newTestEngine(t, testConfig(t))

	e.AddContext("a", "notes", store.AddOptions{})
	e.AddContext("b", "notes", store.AddOptions{})

	if err := e.Clear(""); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, _ := e.Stats()
	if stats.Total != 0 || stats.IndexSize != 0 {
		t.Errorf("Expected empty store and index, got %+v", stats)
	}
}
