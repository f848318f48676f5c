package domain

import "fmt"

// Stage is the current phase of the booking conversation.
type Stage string

const (
	StageBooking    Stage = "booking"    // Collecting trip details, searching hotels
	StageSelecting  Stage = "selecting"  // Results shown, waiting for a hotel choice
	StageConfirming Stage = "confirming" // Hotel chosen, waiting for confirmation
	StageDone       Stage = "done"       // Booking completed, reset pending
)

// Stages lists every valid stage in flow order.
var Stages = []Stage{StageBooking, StageSelecting, StageConfirming, StageDone}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageBooking, StageSelecting, StageConfirming, StageDone:
		return true
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage converts a raw string (e.g. a server hint) into a Stage.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}
