package model

// Budget is a price constraint in THB. Max alone caps the sale price; Min is
// only applied when Max is also present.
type Budget struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ExtractedEntities is the structured interpretation of one user utterance.
// Every field is optional; a record with nothing set still compiles into a
// valid (maximally permissive) catalog query.
type ExtractedEntities struct {
	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"subCategory,omitempty"`
	Usage       string   `json:"usage,omitempty"`
	Budget      *Budget  `json:"budget,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Specs       []string `json:"specs,omitempty"`
	Features    []string `json:"features,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`

	// Suggestions carries clarifying questions for known-ambiguous inputs.
	// Only the deterministic fallback extractor populates it.
	Suggestions []string `json:"suggestions,omitempty"`
}

// HasBudget reports whether the record carries an effective price cap.
func (e *ExtractedEntities) HasBudget() bool {
	return e.Budget != nil && e.Budget.Max != nil
}
