package service

import "context"

// StatusCounter counts status changes by record kind and class
type StatusCounter interface {
	ObserveStatusChange(kind, class string)
}

// StatusRecorder subscribes to StatusChanged and feeds the status counters
type StatusRecorder struct {
	counter StatusCounter
}

// NewStatusRecorder creates a new status recorder
func NewStatusRecorder(counter StatusCounter) *StatusRecorder {
	return &StatusRecorder{counter: counter}
}

// Handle is the event bus subscriber
func (r *StatusRecorder) Handle(_ context.Context, ev *StatusChanged) {
	r.counter.ObserveStatusChange(string(ev.Kind), string(ev.Class))
}
