package domain

// Reply is the structured response returned by the booking backend.
// A field is considered present when it is non-empty.
type Reply struct {
	Summary   string `json:"summary,omitempty" mapstructure:"summary"`
	Results   string `json:"results,omitempty" mapstructure:"results"`
	Reply     string `json:"reply,omitempty" mapstructure:"reply"`
	Message   string `json:"message,omitempty" mapstructure:"message"`
	NextStage string `json:"next_stage,omitempty" mapstructure:"next_stage"`
	Error     string `json:"error,omitempty" mapstructure:"error"`

	// Detail carries FastAPI-style validation errors.
	Detail string `json:"detail,omitempty" mapstructure:"detail"`

	// Raw is the undecoded payload, kept for diagnostics.
	Raw map[string]any `json:"-" mapstructure:"-"`
}

// HasError reports whether the backend flagged an application-level error.
func (r Reply) HasError() bool {
	return r.Error != ""
}

// Hint returns the server-supplied next stage, if it names a valid stage.
func (r Reply) Hint() (Stage, bool) {
	if r.NextStage == "" {
		return "", false
	}
	s, err := ParseStage(r.NextStage)
	if err != nil {
		return "", false
	}
	return s, true
}
