/*
Package learning closes the feedback loop: it records interaction outcomes,
grows the context corpus from completed interactions, and derives insights
from the accumulated outcome log.

The outcome log lives in its own bbolt file, independent of the sqlite
context store. Losing one never corrupts the other.
*/
package learning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketEvents = []byte("events")

// PerformanceEvent is one completed interaction outcome. Created once by the
// caller and immutable afterward, except that late-arriving satisfaction or
// quality scores may update the same EventID.
type PerformanceEvent struct {
	EventID               string            `json:"event_id"`
	UserMessage           string            `json:"user_message"`
	SelectedContext       map[string]string `json:"selected_context,omitempty"`
	ExcludedContext       []string          `json:"excluded_context,omitempty"`
	ContextSize           int               `json:"context_size"`
	ResponseTimeMs        float64           `json:"response_time_ms"`
	UserSatisfaction      *float64          `json:"user_satisfaction,omitempty"`
	AIResponseQuality     *float64          `json:"ai_response_quality,omitempty"`
	ContextRelevanceScore *float64          `json:"context_relevance_score,omitempty"`
	Timestamp             time.Time         `json:"timestamp"`
	SessionID             string            `json:"session_id,omitempty"`
}

// EventLog is the bbolt-backed outcome log.
type EventLog struct {
	db *bbolt.DB
}

// NewEventLog opens (creating if needed) the outcome log at path.
func NewEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create event log directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEvents)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create events bucket: %w", err)
	}

	return &EventLog{db: db}, nil
}

// Record upserts an event keyed by EventID. Recording the same id again
// replaces the stored event, which lets late satisfaction scores land on an
// already-recorded interaction.
func (l *EventLog) Record(event PerformanceEvent) error {
	if event.EventID == "" {
		return fmt.Errorf("record event: empty event id")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	return l.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketEvents).Put([]byte(event.EventID), data)
	})
}

// Get returns the event with the given id, or nil when absent.
func (l *EventLog) Get(eventID string) (*PerformanceEvent, error) {
	var event *PerformanceEvent
	err := l.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEvents).Get([]byte(eventID))
		if data == nil {
			return nil
		}
		var e PerformanceEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		event = &e
		return nil
	})
	return event, err
}

// Since returns every event with a timestamp inside the trailing window.
// A non-positive window returns all events.
func (l *EventLog) Since(window time.Duration) ([]PerformanceEvent, error) {
	var cutoff time.Time
	if window > 0 {
		cutoff = time.Now().UTC().Add(-window)
	}

	var events []PerformanceEvent
	err := l.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(k, v []byte) error {
			var event PerformanceEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return nil
			}
			if !cutoff.IsZero() && event.Timestamp.Before(cutoff) {
				return nil
			}
			events = append(events, event)
			return nil
		})
	})
	return events, err
}

// Count returns the number of recorded events.
func (l *EventLog) Count() (int, error) {
	var count int
	err := l.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketEvents).Stats().KeyN
		return nil
	})
	return count, err
}

// Close releases the underlying database.
func (l *EventLog) Close() error {
	return l.db.Close()
}
