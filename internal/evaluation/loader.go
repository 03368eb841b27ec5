package evaluation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LoadGoldenQueries reads a golden query set. Unknown fields are rejected so a
// misspelled "expected" key cannot silently produce empty labels.
func LoadGoldenQueries(path string) ([]GoldenQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden queries file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var queries []GoldenQuery
	if err := dec.Decode(&queries); err != nil {
		return nil, fmt.Errorf("failed to parse golden queries: %w", err)
	}
	return queries, nil
}

// ValidateGoldenQueries reports every invalid query, not just the first.
func ValidateGoldenQueries(queries []GoldenQuery) error {
	var errs []error
	seen := make(map[string]int, len(queries))

	for i, q := range queries {
		label := fmt.Sprintf("query %d", i)
		if q.ID != "" {
			label = fmt.Sprintf("query %q", q.ID)
			if first, dup := seen[q.ID]; dup {
				errs = append(errs, fmt.Errorf("%s: duplicate id (first at index %d)", label, first))
			} else {
				seen[q.ID] = i
			}
		} else {
			errs = append(errs, fmt.Errorf("%s: missing id", label))
		}

		if q.Query == "" {
			errs = append(errs, fmt.Errorf("%s: missing query text", label))
		}
		if !q.Expected.IsValid() {
			errs = append(errs, fmt.Errorf("%s: invalid expected classification %q", label, q.Expected))
		}
		switch q.Difficulty {
		case "easy", "medium", "hard":
		default:
			errs = append(errs, fmt.Errorf("%s: invalid difficulty %q (must be easy/medium/hard)", label, q.Difficulty))
		}
	}

	return errors.Join(errs...)
}
