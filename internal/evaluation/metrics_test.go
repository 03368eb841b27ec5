package evaluation

import (
	"math"
	"testing"

	"github.com/zatekoja/medibot/internal/domain/entities"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

const (
	dynamo = entities.ClassificationPatientData
	kb     = entities.ClassificationGeneralKnowledge
	both   = entities.ClassificationBoth
)

func sampleConfusion() Confusion {
	c := Confusion{}
	// expected dynamo: 3 right, 1 routed to both
	c.Add(dynamo, dynamo)
	c.Add(dynamo, dynamo)
	c.Add(dynamo, dynamo)
	c.Add(dynamo, both)
	// expected kb: 1 right, 1 routed to both
	c.Add(kb, kb)
	c.Add(kb, both)
	// expected both: 2 right
	c.Add(both, both)
	c.Add(both, both)
	return c
}

func TestConfusion_Recall(t *testing.T) {
	c := sampleConfusion()
	if got := c.Recall(dynamo); !almostEqual(got, 0.75) {
		t.Errorf("expected 0.75, got %f", got)
	}
	if got := c.Recall(kb); !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := c.Recall(both); !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestConfusion_Precision(t *testing.T) {
	c := sampleConfusion()
	if got := c.Precision(dynamo); !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
	// both was predicted 4 times, 2 correctly
	if got := c.Precision(both); !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestConfusion_EmptyClass(t *testing.T) {
	c := Confusion{}
	c.Add(dynamo, dynamo)
	if got := c.Precision(kb); !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0 for never-predicted class, got %f", got)
	}
	if got := c.Recall(kb); !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0 for never-expected class, got %f", got)
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(3, 4); !almostEqual(got, 0.75) {
		t.Errorf("expected 0.75, got %f", got)
	}
	if got := Accuracy(0, 0); !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0 for empty run, got %f", got)
	}
}
