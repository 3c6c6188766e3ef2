package analytics

import (
	"log/slog"
	"sync"
)

// Sink receives analytics events. Record must not block on the network.
type Sink interface {
	Record(Event)
}

// LogSink writes each event as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a LogSink on logger; nil uses the default logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "analytics")}
}

func (s *LogSink) Record(e Event) {
	s.logger.Info("event",
		"name", e.Name,
		"entity", e.Entity,
		"source", string(e.Source),
		"device_id", e.DeviceID,
	)
}

// Multi fans an event out to every sink in order.
type Multi []Sink

func (m Multi) Record(e Event) {
	for _, s := range m {
		if s != nil {
			s.Record(e)
		}
	}
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the names of recorded events in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = Multi(nil)
	_ Sink = (*Recorder)(nil)
	_ Sink = (*Journal)(nil)
)
