package learning

import (
	"log"
	"sync"
	"time"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed to disk.
	flushInterval = 50 * time.Millisecond
)

// Tracker records performance events in the background with non-blocking
// writes. Callers on the interaction path never wait on the event log.
type Tracker struct {
	eventLog   *EventLog
	eventQueue chan PerformanceEvent
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	mu         sync.RWMutex
}

// NewTracker creates a tracker feeding the given event log. A nil event log
// produces a disabled tracker that drops everything.
func NewTracker(eventLog *EventLog) *Tracker {
	t := &Tracker{
		eventLog:   eventLog,
		eventQueue: make(chan PerformanceEvent, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    eventLog != nil,
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Track queues a performance event (non-blocking).
// If the queue is full, the event is dropped and a warning is logged.
func (t *Tracker) Track(event PerformanceEvent) {
	if !t.IsEnabled() {
		return
	}

	select {
	case t.eventQueue <- event:
	default:
		log.Printf("Warning: event queue full, dropping event %s", event.EventID)
	}
}

// Stop gracefully shuts down the tracker, flushing remaining events.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable disables tracking (events are ignored).
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable enables tracking.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = t.eventLog != nil
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// QueueDepth returns the current number of queued events.
func (t *Tracker) QueueDepth() int {
	return len(t.eventQueue)
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]PerformanceEvent, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]PerformanceEvent, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]PerformanceEvent, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then flush and exit.
			for {
				select {
				case event := <-t.eventQueue:
					batch = append(batch, event)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = make([]PerformanceEvent, 0, batchFlushSize)
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to the event log.
func (t *Tracker) flush(events []PerformanceEvent) {
	if len(events) == 0 || t.eventLog == nil {
		return
	}

	for _, event := range events {
		if err := t.eventLog.Record(event); err != nil {
			log.Printf("Warning: failed to record event %s: %v", event.EventID, err)
		}
	}
}
