package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// Collection is a typed view over one named collection of a RecordStore.
type Collection[T any] struct {
	store RecordStore
	name  string
}

func NewCollection[T any](store RecordStore, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Load decodes every record. Records that no longer decode into T are
// skipped and logged.
func (c *Collection[T]) Load(ctx context.Context) []T {
	raw := c.store.Load(ctx, c.name)
	out := make([]T, 0, len(raw))
	for i, record := range raw {
		var v T
		if err := json.Unmarshal(record, &v); err != nil {
			log.Warnw("skipping undecodable record", "collection", c.name, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (c *Collection[T]) Find(ctx context.Context, match func(T) bool) (T, bool) {
	for _, v := range c.Load(ctx) {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Append(ctx context.Context, v T) error {
	record, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", c.name, err)
	}
	return c.store.Append(ctx, c.name, record)
}

// Replace swaps the first record matching match for update's result.
func (c *Collection[T]) Replace(ctx context.Context, match func(T) bool, update func(T) (T, error)) (T, error) {
	var zero T

	updated, err := c.store.Replace(ctx, c.name,
		func(record json.RawMessage) bool {
			var v T
			if err := json.Unmarshal(record, &v); err != nil {
				return false
			}
			return match(v)
		},
		func(record json.RawMessage) (json.RawMessage, error) {
			var v T
			if err := json.Unmarshal(record, &v); err != nil {
				return nil, err
			}
			next, err := update(v)
			if err != nil {
				return nil, err
			}
			return json.Marshal(next)
		},
	)
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(updated, &out); err != nil {
		return zero, fmt.Errorf("decode %s record: %w", c.name, err)
	}
	return out, nil
}
