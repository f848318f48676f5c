package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidStage is returned when a string does not name a known stage.
var ErrInvalidStage = errors.New("invalid stage")

// ErrNoEndpoint is returned when the current stage has no backend endpoint (e.g. "done").
var ErrNoEndpoint = errors.New("no endpoint for stage")

// ErrEmptyInput is returned when a submission contains only whitespace.
var ErrEmptyInput = errors.New("empty input")
