package entities

import "strings"

// Classification is the routing decision that selects which data sources a query needs.
type Classification string

const (
	// ClassificationPatientData routes to the patient record store only.
	ClassificationPatientData Classification = "dynamo"
	// ClassificationGeneralKnowledge routes to the knowledge service only.
	ClassificationGeneralKnowledge Classification = "kb"
	// ClassificationBoth routes to both sources.
	ClassificationBoth Classification = "both"
)

// ValidClassifications returns all valid classification values.
func ValidClassifications() []Classification {
	return []Classification{ClassificationPatientData, ClassificationGeneralKnowledge, ClassificationBoth}
}

// IsValid checks if the classification value is one of the defined constants.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationPatientData, ClassificationGeneralKnowledge, ClassificationBoth:
		return true
	}
	return false
}

// NeedsPatientData reports whether the patient record must be fetched.
func (c Classification) NeedsPatientData() bool {
	return c == ClassificationPatientData || c == ClassificationBoth
}

// NeedsKnowledge reports whether knowledge-base content must be fetched.
func (c Classification) NeedsKnowledge() bool {
	return c == ClassificationGeneralKnowledge || c == ClassificationBoth
}

// ParseClassification normalizes raw model output or stage input.
// Anything that is not exactly one of the three tokens becomes ClassificationBoth,
// so a malformed answer over-fetches instead of skipping a source.
func ParseClassification(raw string) Classification {
	c := Classification(strings.ToLower(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return ClassificationBoth
	}
	return c
}
