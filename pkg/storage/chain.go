package storage

import (
	"context"
	"errors"
	"fmt"
)

// Chain tries an ordered list of stores. Put durable backends first.
type Chain struct {
	stores []Store
}

// NewChain returns a Chain over stores. Nil entries are skipped.
func NewChain(stores ...Store) *Chain {
	c := &Chain{stores: make([]Store, 0, len(stores))}
	for _, s := range stores {
		if s != nil {
			c.stores = append(c.stores, s)
		}
	}
	return c
}

// Len returns the number of backends.
func (c *Chain) Len() int {
	return len(c.stores)
}

// Get returns the first value found. Backend failures are skipped.
// ErrNotFound is returned when no backend has the key.
func (c *Chain) Get(ctx context.Context, key string) (string, error) {
	for _, s := range c.stores {
		v, err := s.Get(ctx, key)
		if err == nil && v != "" {
			return v, nil
		}
	}
	return "", ErrNotFound
}

// GetAll reads keys from a single backend: the first one holding a
// non-empty value for keys[0]. Values of the remaining keys come from that
// same backend and are empty when it lacks them. ErrNotFound is returned
// when no backend has keys[0].
func (c *Chain) GetAll(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	for _, s := range c.stores {
		v, err := s.Get(ctx, keys[0])
		if err != nil || v == "" {
			continue
		}
		values := make([]string, len(keys))
		values[0] = v
		for i, k := range keys[1:] {
			if rest, err := s.Get(ctx, k); err == nil {
				values[i+1] = rest
			}
		}
		return values, nil
	}
	return nil, ErrNotFound
}

// Set writes to the first backend that accepts the value.
func (c *Chain) Set(ctx context.Context, key, value string) error {
	return c.SetAll(ctx, Entry{Key: key, Value: value})
}

// SetAll writes every entry to the first backend that accepts all of them.
// It returns nil on the first success and the joined backend errors when
// every backend failed.
func (c *Chain) SetAll(ctx context.Context, entries ...Entry) error {
	if len(c.stores) == 0 {
		return ErrUnavailable
	}

	var errs []error
	for i, s := range c.stores {
		err := setAll(ctx, s, entries)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("store %d: %w", i, err))
	}
	return errors.Join(errs...)
}

var _ Store = (*Chain)(nil)
