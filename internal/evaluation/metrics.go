package evaluation

import "github.com/zatekoja/medibot/internal/domain/entities"

// Confusion is a confusion matrix indexed by expected then predicted class.
type Confusion map[entities.Classification]map[entities.Classification]int

// Add counts one prediction.
func (c Confusion) Add(expected, predicted entities.Classification) {
	row, ok := c[expected]
	if !ok {
		row = make(map[entities.Classification]int)
		c[expected] = row
	}
	row[predicted]++
}

// Precision returns the fraction of predictions of class that were correct.
// Returns 0.0 if class was never predicted.
func (c Confusion) Precision(class entities.Classification) float64 {
	predicted := 0
	for _, row := range c {
		predicted += row[class]
	}
	if predicted == 0 {
		return 0.0
	}
	return float64(c[class][class]) / float64(predicted)
}

// Recall returns the fraction of queries expected as class that were predicted as class.
// Returns 0.0 if no query expected class.
func (c Confusion) Recall(class entities.Classification) float64 {
	total := 0
	for _, n := range c[class] {
		total += n
	}
	if total == 0 {
		return 0.0
	}
	return float64(c[class][class]) / float64(total)
}

// Accuracy returns correct/total, or 0.0 for an empty run.
func Accuracy(correct, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(correct) / float64(total)
}
