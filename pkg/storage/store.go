package storage

import (
	"context"
	"errors"
)

// Sentinel errors returned by stores.
var (
	// ErrNotFound is returned by Get when the key has no value.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnavailable is returned when a backend cannot be used at all.
	ErrUnavailable = errors.New("storage: backend unavailable")
)

// Store is a string key/value backend that may fail.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Entry is a single key/value pair written by SetAll.
type Entry struct {
	Key   string
	Value string
}

// multiSetter is implemented by stores that can write several keys at once.
type multiSetter interface {
	SetAll(ctx context.Context, entries ...Entry) error
}

// setAll writes entries to s, using its native multi-key write when available.
func setAll(ctx context.Context, s Store, entries []Entry) error {
	if m, ok := s.(multiSetter); ok {
		return m.SetAll(ctx, entries...)
	}
	for _, e := range entries {
		if err := s.Set(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
