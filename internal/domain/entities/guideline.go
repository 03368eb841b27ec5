package entities

// Guideline is a clinical guideline excerpt held in the search index.
type Guideline struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Specialty string   `json:"specialty,omitempty"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags,omitempty"`
}
