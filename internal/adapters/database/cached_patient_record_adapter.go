package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
)

const recordCacheScope = "patient_record"

// CachedPatientRecordAdapter wraps a PatientRecordStore with a read-through cache.
// Absent records are not cached, so a newly admitted patient is visible immediately.
type CachedPatientRecordAdapter struct {
	store providers.PatientRecordStore
	cache providers.CacheProvider
	ttl   int
}

// NewCachedPatientRecordAdapter creates a new cached patient record adapter
func NewCachedPatientRecordAdapter(store providers.PatientRecordStore, cache providers.CacheProvider, ttl time.Duration) *CachedPatientRecordAdapter {
	seconds := int(ttl.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	return &CachedPatientRecordAdapter{
		store: store,
		cache: cache,
		ttl:   seconds,
	}
}

func patientRecordCacheKey(table, key string) string {
	return fmt.Sprintf("patient_record:%s:%s", table, key)
}

// GetByKey returns the cached record or loads it from the underlying store.
// Cache failures fall through to the store.
func (a *CachedPatientRecordAdapter) GetByKey(ctx context.Context, table, key string) (entities.PatientRecord, error) {
	logger := observability.LoggerFromContext(ctx)
	cacheKey := patientRecordCacheKey(table, key)

	cached, err := a.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		var record entities.PatientRecord
		decodeErr := json.Unmarshal(cached, &record)
		if decodeErr == nil {
			observability.RecordCacheHit(ctx, recordCacheScope)
			return record, nil
		}
		logger.Warn().Err(decodeErr).Str("table", table).Msg("failed to decode cached patient record")
		observability.RecordCacheError(ctx, recordCacheScope)
	case errors.Is(err, providers.ErrCacheMiss):
		observability.RecordCacheMiss(ctx, recordCacheScope)
	default:
		logger.Warn().Err(err).Str("table", table).Msg("patient record cache unavailable")
		observability.RecordCacheError(ctx, recordCacheScope)
	}

	record, err := a.store.GetByKey(ctx, table, key)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(record); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, a.ttl); err != nil {
			logger.Warn().Err(err).Str("table", table).Msg("failed to cache patient record")
		}
	}
	return record, nil
}

// Invalidate drops the cached copy of a record.
func (a *CachedPatientRecordAdapter) Invalidate(ctx context.Context, table, key string) error {
	return a.cache.Delete(ctx, patientRecordCacheKey(table, key))
}
