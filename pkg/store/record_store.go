package store

import (
	"context"
	"encoding/json"
	"fmt"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/metrics"

	"github.com/gofiber/fiber/v2/log"
)

const (
	CollectionDonations         = "donations"
	CollectionFoodRequests      = "food_requests"
	CollectionVolunteerTasks    = "volunteer_tasks"
	CollectionVolunteerProfiles = "volunteer_profiles"
)

type (
	// RecordStore keeps named collections of JSON records in insertion
	// order. It is not safe for concurrent callers; serialise access with
	// txn.Serial.
	RecordStore interface {
		Load(ctx context.Context, collection string) []json.RawMessage
		Append(ctx context.Context, collection string, record json.RawMessage) error
		Replace(ctx context.Context, collection string, match func(json.RawMessage) bool, update func(json.RawMessage) (json.RawMessage, error)) (json.RawMessage, error)
	}

	recordStore struct {
		medium Medium
	}
)

func NewRecordStore(medium Medium) RecordStore {
	return &recordStore{medium: medium}
}

func (s *recordStore) Load(ctx context.Context, collection string) []json.RawMessage {
	records, err := s.read(ctx, collection)
	if err != nil {
		log.Warnw("collection unreadable, treating as empty", "collection", collection, "error", err)
		metrics.StoreCorruptLoads.WithLabelValues(collection).Inc()
		return []json.RawMessage{}
	}
	return records
}

func (s *recordStore) Append(ctx context.Context, collection string, record json.RawMessage) error {
	if !json.Valid(record) {
		return fmt.Errorf("append to %s: record is not valid JSON", collection)
	}

	records, err := s.readForWrite(ctx, collection)
	if err != nil {
		return err
	}

	next := make([]json.RawMessage, 0, len(records)+1)
	next = append(next, records...)
	next = append(next, record)
	return s.write(ctx, collection, next)
}

func (s *recordStore) Replace(
	ctx context.Context,
	collection string,
	match func(json.RawMessage) bool,
	update func(json.RawMessage) (json.RawMessage, error),
) (json.RawMessage, error) {
	records, err := s.readForWrite(ctx, collection)
	if err != nil {
		return nil, err
	}

	for i, record := range records {
		if !match(record) {
			continue
		}

		updated, err := update(record)
		if err != nil {
			return nil, err
		}
		if !json.Valid(updated) {
			return nil, fmt.Errorf("replace in %s: updated record is not valid JSON", collection)
		}

		next := make([]json.RawMessage, len(records))
		copy(next, records)
		next[i] = updated
		if err := s.write(ctx, collection, next); err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("replace in %s: %w", collection, domain.ErrNotFound)
}

func (s *recordStore) read(ctx context.Context, collection string) ([]json.RawMessage, error) {
	blob, ok, err := s.medium.Get(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []json.RawMessage{}, nil
	}

	records, _, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// readForWrite treats a corrupt blob as empty, like Load, but refuses to
// write over a collection the medium failed to return.
func (s *recordStore) readForWrite(ctx context.Context, collection string) ([]json.RawMessage, error) {
	blob, ok, err := s.medium.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	if !ok {
		return []json.RawMessage{}, nil
	}

	records, version, err := decodeBlob(blob)
	if err != nil {
		log.Warnw("collection corrupt, rewriting from empty", "collection", collection, "error", err)
		metrics.StoreCorruptLoads.WithLabelValues(collection).Inc()
		return []json.RawMessage{}, nil
	}
	if version < SchemaVersion {
		log.Infow("upgrading collection schema", "collection", collection, "from", version, "to", SchemaVersion)
	}
	return records, nil
}

func (s *recordStore) write(ctx context.Context, collection string, records []json.RawMessage) error {
	blob, err := encodeBlob(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	if err := s.medium.Set(ctx, collection, blob, SchemaVersion); err != nil {
		metrics.StoreWrites.WithLabelValues(collection, "error").Inc()
		return fmt.Errorf("write %s: %w", collection, err)
	}
	metrics.StoreWrites.WithLabelValues(collection, "ok").Inc()
	return nil
}
