/*
Package engine wires the context pipeline into one service object: embedder,
store, similarity index, retriever, assembler, and the learning loop.

Construction degrades instead of failing: a broken model falls back to hash
embeddings, a broken accelerated index falls back to linear scan, a broken
store or event log disables its slice of functionality with a warning. An
engine always comes up.
*/
package engine

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/embedding"
	"github.com/contextweave/contextweave/internal/index"
	"github.com/contextweave/contextweave/internal/learning"
	"github.com/contextweave/contextweave/internal/prompt"
	"github.com/contextweave/contextweave/internal/retriever"
	"github.com/contextweave/contextweave/internal/store"
)

// Engine is the assembled context pipeline.
type Engine struct {
	cfg       *config.Config
	embedder  embedding.Embedder
	store     *store.Store
	idx       index.Index
	retriever *retriever.Retriever
	assembler *prompt.Assembler
	recorder  *learning.Recorder
	eventLog  *learning.EventLog
	tracker   *learning.Tracker
	analyzer  *learning.Analyzer
}

// New assembles an engine from configuration. The returned engine is always
// usable; subsystems that failed to come up run degraded.
func New(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	embedder := embedding.New(cfg)

	entryStore := store.NewStore(cfg, embedder)
	if err := entryStore.Init(); err != nil {
		log.Printf("Warning: context store unavailable, running without persistence: %v", err)
	}

	idx := buildIndex(entryStore)
	entryStore.SetIndex(idx)
	rehydrateIndex(entryStore, idx)

	ret := retriever.New(embedder, entryStore, idx)
	assembler := prompt.New(ret, cfg.MaxContextResults)
	recorder := learning.NewRecorder(entryStore)

	eventLog, err := learning.NewEventLog(cfg.EventLogPath)
	if err != nil {
		log.Printf("Warning: event log unavailable, outcome tracking disabled: %v", err)
		eventLog = nil
	}

	e := &Engine{
		cfg:       cfg,
		embedder:  embedder,
		store:     entryStore,
		idx:       idx,
		retriever: ret,
		assembler: assembler,
		recorder:  recorder,
		eventLog:  eventLog,
		tracker:   learning.NewTracker(eventLog),
	}
	if eventLog != nil {
		e.analyzer = learning.NewAnalyzer(eventLog)
	}

	return e, nil
}

// buildIndex prefers the accelerated index and falls back to a linear scan
// over the store.
func buildIndex(entryStore *store.Store) index.Index {
	idx, err := index.NewChromemIndex()
	if err != nil {
		log.Printf("Warning: accelerated index unavailable, falling back to linear scan: %v", err)
		return index.NewLinearIndex(entryStore)
	}
	return idx
}

// rehydrateIndex reloads persisted vectors into a fresh in-memory index so
// entries from previous runs stay searchable.
func rehydrateIndex(entryStore *store.Store, idx index.Index) {
	records, err := entryStore.ListVectors()
	if err != nil {
		log.Printf("Warning: failed to rehydrate index: %v", err)
		return
	}
	for _, record := range records {
		if err := idx.Add(record.ID, record.Vector); err != nil {
			log.Printf("Warning: failed to index entry %s: %v", record.ID, err)
		}
	}
}

// AddContext embeds and persists a context entry, returning its id.
func (e *Engine) AddContext(text, contextType string, opts store.AddOptions) (string, error) {
	return e.store.Add(text, contextType, opts)
}

// FindSimilar returns stored entries ranked by similarity to the query.
func (e *Engine) FindSimilar(query string, opts retriever.Options) ([]store.Entry, error) {
	return e.retriever.FindSimilar(query, opts)
}

// Enhance splices relevant context into basePrompt. NaN selects the
// configured similarity floor; any other value is used as given, so an
// explicit 0 floor is expressible and a negative value disables the floor.
func (e *Engine) Enhance(basePrompt, userMessage, contextType string, threshold float64) prompt.Result {
	return e.assembler.Enhance(basePrompt, userMessage, contextType, e.resolveThreshold(threshold))
}

// resolveThreshold maps the NaN sentinel to the configured default.
func (e *Engine) resolveThreshold(threshold float64) float64 {
	if math.IsNaN(threshold) {
		return e.cfg.SimilarityThreshold
	}
	return threshold
}

// Learn grows the corpus from a completed interaction. Never fails.
func (e *Engine) Learn(userMessage, enhancedPrompt string, qualityScore float64, contextType string) {
	e.recorder.Learn(userMessage, enhancedPrompt, qualityScore, contextType)
}

// RecordOutcome queues a performance event for background recording and
// returns its id, generating one when the caller left it empty. Recording
// the same id again updates the stored event.
func (e *Engine) RecordOutcome(event learning.PerformanceEvent) string {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	e.tracker.Track(event)
	return event.EventID
}

// Outcome looks up a recorded performance event by id. Returns nil when the
// id is unknown; errors when outcome tracking is disabled. Events queued but
// not yet flushed by the tracker are not visible.
func (e *Engine) Outcome(eventID string) (*learning.PerformanceEvent, error) {
	if e.eventLog == nil {
		return nil, fmt.Errorf("event log unavailable")
	}
	return e.eventLog.Get(eventID)
}

// PendingOutcomes returns how many recorded events are still waiting for the
// background flush.
func (e *Engine) PendingOutcomes() int {
	return e.tracker.QueueDepth()
}

// Stats reports store counts, timestamp bounds, and index size.
func (e *Engine) Stats() (store.Stats, error) {
	return e.store.Stats()
}

// List returns stored entries newest first, optionally filtered by type.
func (e *Engine) List(contextType string, limit int) ([]store.Entry, error) {
	return e.store.List(contextType, limit)
}

// Clear deletes all entries, or all entries of one context type.
func (e *Engine) Clear(contextType string) error {
	return e.store.Clear(contextType)
}

// Analyze derives insights and recommendations from outcomes in the trailing
// window. A non-positive window analyzes the whole log.
func (e *Engine) Analyze(window time.Duration) (*learning.Analysis, error) {
	if e.analyzer == nil {
		return nil, fmt.Errorf("event log unavailable")
	}
	return e.analyzer.Analyze(window)
}

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Close flushes the tracker and releases the store and event log.
func (e *Engine) Close() {
	e.tracker.Stop()
	if e.eventLog != nil {
		if err := e.eventLog.Close(); err != nil {
			log.Printf("Warning: failed to close event log: %v", err)
		}
	}
	e.store.Close()
}
