/*
Package benchmark measures context pipeline latency.

It seeds the store with synthetic entries and times the three hot operations:
embedding a query, running a similarity search, and assembling an enhanced
prompt. Results are wall-clock averages over a fixed number of iterations.
*/
package benchmark

import (
	"fmt"
	"strings"
	"time"

	"github.com/contextweave/contextweave/internal/engine"
	"github.com/contextweave/contextweave/internal/retriever"
	"github.com/contextweave/contextweave/internal/store"
)

// Iterations is the number of timed runs per operation.
const Iterations = 20

// seedTopics provides variety so seeded entries do not collapse into one id.
var seedTopics = []string{
	"caching strategies for read-heavy workloads",
	"connection pooling for database clients",
	"horizontal scaling with stateless services",
	"profiling memory allocations in production",
	"structuring retries with exponential backoff",
	"sharding keys for even load distribution",
	"batching writes to reduce commit overhead",
	"tracing request latency across services",
}

// OperationResult holds the timing for one operation.
type OperationResult struct {
	Operation string        `json:"operation"`
	Runs      int           `json:"runs"`
	Total     time.Duration `json:"total"`
	Average   time.Duration `json:"average"`
}

// Result contains all benchmark timings plus the corpus size used.
type Result struct {
	SeededEntries int               `json:"seededEntries"`
	Operations    []OperationResult `json:"operations"`
}

// Run seeds the engine with entryCount synthetic entries and times the hot
// operations. The engine's store is modified; run against a scratch database.
func Run(e *engine.Engine, entryCount int) (*Result, error) {
	if entryCount <= 0 {
		entryCount = 100
	}

	for i := 0; i < entryCount; i++ {
		topic := seedTopics[i%len(seedTopics)]
		text := fmt.Sprintf("%s, variant %d", topic, i)
		if _, err := e.AddContext(text, "benchmark", store.AddOptions{}); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
	}

	result := &Result{SeededEntries: entryCount}

	embedTime := timeRuns(func() {
		e.FindSimilar("how should I cache hot data", retriever.Options{Limit: 1, MinSimilarity: -1})
	})
	result.Operations = append(result.Operations, operationResult("search (top 1)", embedTime))

	searchTime := timeRuns(func() {
		e.FindSimilar("how should I cache hot data", retriever.Options{Limit: 10, MinSimilarity: -1})
	})
	result.Operations = append(result.Operations, operationResult("search (top 10)", searchTime))

	enhanceTime := timeRuns(func() {
		e.Enhance("You are a helpful assistant.", "how should I cache hot data", "benchmark", -1)
	})
	result.Operations = append(result.Operations, operationResult("enhance", enhanceTime))

	return result, nil
}

// timeRuns executes fn Iterations times and returns the total duration.
func timeRuns(fn func()) time.Duration {
	start := time.Now()
	for i := 0; i < Iterations; i++ {
		fn()
	}
	return time.Since(start)
}

func operationResult(name string, total time.Duration) OperationResult {
	return OperationResult{
		Operation: name,
		Runs:      Iterations,
		Total:     total,
		Average:   total / Iterations,
	}
}

// FormatResult formats the benchmark result for display.
func FormatResult(result *Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Benchmark over %d seeded entries (%d runs per operation)\n\n", result.SeededEntries, Iterations))
	for _, op := range result.Operations {
		sb.WriteString(fmt.Sprintf("  %-16s avg %-12s total %s\n", op.Operation, op.Average, op.Total))
	}

	return sb.String()
}
