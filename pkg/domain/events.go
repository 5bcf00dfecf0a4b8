package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter       EventType = "step_enter"
	EventRequestStart    EventType = "request_start"
	EventRequestComplete EventType = "request_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// StepEvent is emitted when the active step changes.
type StepEvent struct {
	EventBase
	Step string `json:"step"`
}

// RequestEvent describes a generation request and, once complete, its outcome.
type RequestEvent struct {
	EventBase
	Intent   Intent        `json:"intent"`
	Hidden   bool          `json:"hidden"`
	Category Category      `json:"category,omitempty"`
	Failed   bool          `json:"failed,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnStepEnter       func(context.Context, *StepEvent)
	OnRequestStart    func(context.Context, *RequestEvent)
	OnRequestComplete func(context.Context, *RequestEvent)
}
