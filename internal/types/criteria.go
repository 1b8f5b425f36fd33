package types

// ProjectCriteria describes the project a caller wants funding for.
// Supplied once per ranking request and never mutated.
type ProjectCriteria struct {
	// Region is the project's region code (e.g. "BY").
	Region string `json:"region"`
	// Category is the project category to match against program categories.
	Category string `json:"category"`
	// Measures lists the measures the project intends to implement.
	Measures []string `json:"measures,omitempty"`
	// Budget is the optional project budget in EUR.
	Budget *float64 `json:"budget,omitempty"`
	// Urgency is an optional free-form urgency marker ("high", "normal").
	Urgency string `json:"urgency,omitempty"`
}
