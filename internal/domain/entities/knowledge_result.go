package entities

import "strings"

// KnowledgeDeniedMessage is returned instead of knowledge-base content to patient callers.
const KnowledgeDeniedMessage = "We are unable to provide clinical guideline information due to hospital privacy rules."

// KnowledgeUncertainMarker is what the knowledge service is told to answer when it lacks confidence.
const KnowledgeUncertainMarker = "We are not sure"

// KnowledgeResult is either clinical guidance for a doctor or a denial for a patient.
type KnowledgeResult struct {
	Guidance string   `json:"guidance,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Denied   bool     `json:"denied,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// NewGuidanceResult wraps knowledge-service output.
func NewGuidanceResult(guidance string, sources []string) *KnowledgeResult {
	return &KnowledgeResult{Guidance: strings.TrimSpace(guidance), Sources: sources}
}

// NewDeniedResult returns the fixed privacy denial payload.
func NewDeniedResult() *KnowledgeResult {
	return &KnowledgeResult{Denied: true, Message: KnowledgeDeniedMessage}
}

// IsUncertain reports whether the knowledge service declined to answer.
func (k *KnowledgeResult) IsUncertain() bool {
	return k != nil && strings.HasPrefix(strings.TrimSpace(k.Guidance), KnowledgeUncertainMarker)
}
