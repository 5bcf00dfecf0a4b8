package domain

import "errors"

// ErrSessionNotFound is returned when a run ID cannot be found in the session manager.
var ErrSessionNotFound = errors.New("session not found")

// ErrRequestInFlight is returned when a generation request is already pending for the run.
// The new request is dropped, not queued.
var ErrRequestInFlight = errors.New("generation request already in flight")

// ErrNoDocuments is returned when a session is started without any scenario document.
var ErrNoDocuments = errors.New("no scenario documents loaded")

// ErrDocumentNotFound is returned when a document name is not part of the loaded set.
var ErrDocumentNotFound = errors.New("document not found")

// ErrDuplicateDocument is returned when two documents share a name.
var ErrDuplicateDocument = errors.New("duplicate document name")

// ErrInvalidClock is returned when a clock violates 0 <= current <= max.
var ErrInvalidClock = errors.New("invalid clock")

// ErrUnknownCategory is returned when a response carries an unknown type tag.
var ErrUnknownCategory = errors.New("unknown response category")

// ErrGeneration wraps transport failures reported by generator adapters.
var ErrGeneration = errors.New("generation failed")

// ErrInvalidStep is returned when a step name is empty.
var ErrInvalidStep = errors.New("invalid step name")

// ErrUnknownCacheKind is returned for a cache kind outside clues, npc and player.
var ErrUnknownCacheKind = errors.New("unknown cache kind")
