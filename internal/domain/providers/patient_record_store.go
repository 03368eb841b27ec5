package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/medibot/internal/domain/entities"
)

// ErrRecordNotFound is returned by a PatientRecordStore when no record exists for a key.
// It is distinct from any lookup failure.
var ErrRecordNotFound = errors.New("patient record not found")

// PatientRecordStore defines the read-only patient record lookup.
type PatientRecordStore interface {
	// GetByKey returns the record stored under key in table, or ErrRecordNotFound.
	GetByKey(ctx context.Context, table, key string) (entities.PatientRecord, error)
}
