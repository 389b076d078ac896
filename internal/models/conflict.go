package models

// ValidationResult is the validator's output contract. Conflicts block
// acceptance; suggestions are reserved for future auto-fix hints and are
// currently always empty. Warnings are advisory and never block.
type ValidationResult struct {
	Conflicts       []string `json:"conflicts"`
	Suggestions     []string `json:"suggestions"`
	HourWarnings    []string `json:"hourWarnings,omitempty"`
	TrainerWarnings []string `json:"trainerWarnings,omitempty"`
}

// OK reports whether the schedule may be accepted as-is.
func (r ValidationResult) OK() bool {
	return len(r.Conflicts) == 0
}
