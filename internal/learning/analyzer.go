package learning

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// minSectionSamples is the minimum number of satisfaction-labeled events
	// a context section needs before it gets an effectiveness grade.
	minSectionSamples = 5

	// minCorrelationSamples is the minimum number of paired samples before a
	// correlation insight is emitted.
	minCorrelationSamples = 10

	// correlationFloor filters out weak correlations.
	correlationFloor = 0.3

	// lowSatisfactionThreshold triggers the threshold-lowering recommendation.
	lowSatisfactionThreshold = 0.6
)

// Insight is a derived statement about an observed correlation. Recomputed on
// demand, never persisted.
type Insight struct {
	Description string  `json:"description"`
	Correlation float64 `json:"correlation"`
	Confidence  float64 `json:"confidence"`
	Samples     int     `json:"samples"`
}

// Recommendation is a rule-derived action, ranked by priority (1 = highest).
type Recommendation struct {
	Priority int    `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

// Analysis is the full report over one time window.
type Analysis struct {
	Events               int               `json:"events"`
	MeanContextSize      float64           `json:"mean_context_size"`
	MeanResponseTimeMs   float64           `json:"mean_response_time_ms"`
	MeanSatisfaction     float64           `json:"mean_satisfaction"`
	MeanQuality          float64           `json:"mean_quality"`
	SatisfactionSamples  int               `json:"satisfaction_samples"`
	SectionEffectiveness map[string]string `json:"section_effectiveness"`
	Insights             []Insight         `json:"insights"`
	Recommendations      []Recommendation  `json:"recommendations"`
}

// Analyzer derives insights and recommendations from the event log.
type Analyzer struct {
	eventLog *EventLog
}

// NewAnalyzer creates an analyzer over the given event log.
func NewAnalyzer(eventLog *EventLog) *Analyzer {
	return &Analyzer{eventLog: eventLog}
}

// Analyze computes means, per-section effectiveness, correlation insights,
// and ranked recommendations over events in the trailing window. A
// non-positive window analyzes the whole log.
func (a *Analyzer) Analyze(window time.Duration) (*Analysis, error) {
	events, err := a.eventLog.Since(window)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	analysis := &Analysis{
		Events:               len(events),
		SectionEffectiveness: make(map[string]string),
		Insights:             []Insight{},
		Recommendations:      []Recommendation{},
	}
	if len(events) == 0 {
		return analysis, nil
	}

	analysis.MeanContextSize = meanOf(events, func(e PerformanceEvent) (float64, bool) {
		return float64(e.ContextSize), true
	})
	analysis.MeanResponseTimeMs = meanOf(events, func(e PerformanceEvent) (float64, bool) {
		return e.ResponseTimeMs, true
	})
	analysis.MeanSatisfaction = meanOf(events, func(e PerformanceEvent) (float64, bool) {
		if e.UserSatisfaction == nil {
			return 0, false
		}
		return *e.UserSatisfaction, true
	})
	analysis.MeanQuality = meanOf(events, func(e PerformanceEvent) (float64, bool) {
		if e.AIResponseQuality == nil {
			return 0, false
		}
		return *e.AIResponseQuality, true
	})
	for _, e := range events {
		if e.UserSatisfaction != nil {
			analysis.SatisfactionSamples++
		}
	}

	analysis.SectionEffectiveness = sectionEffectiveness(events)
	analysis.Insights = correlationInsights(events)
	analysis.Recommendations = recommendations(analysis)

	return analysis, nil
}

// meanOf averages the values extract yields, skipping events where the
// second return is false. Returns 0 when no event contributes.
func meanOf(events []PerformanceEvent, extract func(PerformanceEvent) (float64, bool)) float64 {
	var sum float64
	var n int
	for _, e := range events {
		if v, ok := extract(e); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// sectionEffectiveness grades each context section by the average
// satisfaction of events that included it. Sections with fewer than
// minSectionSamples labeled events are skipped.
func sectionEffectiveness(events []PerformanceEvent) map[string]string {
	type acc struct {
		sum float64
		n   int
	}
	perSection := make(map[string]*acc)

	for _, e := range events {
		if e.UserSatisfaction == nil {
			continue
		}
		for section := range e.SelectedContext {
			if perSection[section] == nil {
				perSection[section] = &acc{}
			}
			perSection[section].sum += *e.UserSatisfaction
			perSection[section].n++
		}
	}

	grades := make(map[string]string)
	for section, a := range perSection {
		if a.n < minSectionSamples {
			continue
		}
		mean := a.sum / float64(a.n)
		switch {
		case mean < 0.5:
			grades[section] = "low"
		case mean < 0.7:
			grades[section] = "medium"
		default:
			grades[section] = "high"
		}
	}
	return grades
}

// correlationInsights computes Pearson correlations of context size and
// response time against satisfaction. An insight is emitted only with at
// least minCorrelationSamples paired samples and |r| above the floor.
func correlationInsights(events []PerformanceEvent) []Insight {
	var sizes, times, sats []float64
	for _, e := range events {
		if e.UserSatisfaction == nil {
			continue
		}
		sizes = append(sizes, float64(e.ContextSize))
		times = append(times, e.ResponseTimeMs)
		sats = append(sats, *e.UserSatisfaction)
	}

	insights := []Insight{}
	if len(sats) < minCorrelationSamples {
		return insights
	}

	if r, ok := pearson(sizes, sats); ok && math.Abs(r) > correlationFloor {
		direction := "larger context correlates with higher satisfaction"
		if r < 0 {
			direction = "larger context correlates with lower satisfaction"
		}
		insights = append(insights, Insight{
			Description: direction,
			Correlation: r,
			Confidence:  math.Min(math.Abs(r), 1),
			Samples:     len(sats),
		})
	}

	if r, ok := pearson(times, sats); ok && math.Abs(r) > correlationFloor {
		direction := "slower responses correlate with higher satisfaction"
		if r < 0 {
			direction = "slower responses correlate with lower satisfaction"
		}
		insights = append(insights, Insight{
			Description: direction,
			Correlation: r,
			Confidence:  math.Min(math.Abs(r), 1),
			Samples:     len(sats),
		})
	}

	return insights
}

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Returns false when either series has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if n == 0 || len(xs) != len(ys) {
		return 0, false
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var num, denomX, denomY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}
	if denomX == 0 || denomY == 0 {
		return 0, false
	}

	return num / math.Sqrt(denomX*denomY), true
}

// recommendations derives ranked actions from an analysis.
func recommendations(analysis *Analysis) []Recommendation {
	recs := []Recommendation{}

	if analysis.SatisfactionSamples > 0 && analysis.MeanSatisfaction < lowSatisfactionThreshold {
		recs = append(recs, Recommendation{
			Priority: 1,
			Action:   "lower the similarity threshold to inject more context",
			Reason:   fmt.Sprintf("mean satisfaction %.2f is below %.2f", analysis.MeanSatisfaction, lowSatisfactionThreshold),
		})
	}

	lowSections := []string{}
	for section, grade := range analysis.SectionEffectiveness {
		if grade == "low" {
			lowSections = append(lowSections, section)
		}
	}
	sort.Strings(lowSections)
	for _, section := range lowSections {
		recs = append(recs, Recommendation{
			Priority: 2,
			Action:   fmt.Sprintf("deprioritize context section %q", section),
			Reason:   "section shows low average satisfaction",
		})
	}

	if len(analysis.Insights) > 0 {
		recs = append(recs, Recommendation{
			Priority: 3,
			Action:   "run a pattern-based optimization pass over context selection",
			Reason:   fmt.Sprintf("%d correlation pattern(s) detected", len(analysis.Insights)),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})
	return recs
}
