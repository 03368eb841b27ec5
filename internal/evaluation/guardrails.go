package evaluation

import "fmt"

// GuardrailConfig sets the minimum quality an evaluation run must reach.
type GuardrailConfig struct {
	MinAccuracy float64
	// MinRecall applies to every classification present in the golden set.
	MinRecall    float64
	MaxErrorRate float64
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxErrorRate <= 0 {
		config.MaxErrorRate = 0.05
	}
	return &Guardrails{config: config}
}

// Check returns an error describing the first threshold s falls below.
func (g *Guardrails) Check(s *EvalSummary) error {
	if s == nil || s.TotalQueries == 0 {
		return fmt.Errorf("no golden queries evaluated")
	}
	if s.Accuracy < g.config.MinAccuracy {
		return fmt.Errorf("accuracy %.3f below minimum %.3f", s.Accuracy, g.config.MinAccuracy)
	}
	if rate := float64(s.Errors) / float64(s.TotalQueries); rate > g.config.MaxErrorRate {
		return fmt.Errorf("classification error rate %.3f above maximum %.3f", rate, g.config.MaxErrorRate)
	}
	for class, cs := range s.ByClass {
		if cs.Recall < g.config.MinRecall {
			return fmt.Errorf("recall for %s %.3f below minimum %.3f", class, cs.Recall, g.config.MinRecall)
		}
	}
	return nil
}
