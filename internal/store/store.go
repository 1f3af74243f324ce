// Package store owns the submitted record collections and mirrors each one
// to durable key-value storage after every append.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/seed"
	"github.com/mr1hm/go-field-mesh/internal/storage"
)

var ErrUnknownKind = errors.New("unknown record kind")

// Snapshot is a read-only view of every collection. A snapshot is never
// modified after it is published; appends publish a new one.
type Snapshot struct {
	Disasters   []models.DisasterSurvey
	Agriculture []models.AgricultureSurvey
	Aid         []models.AidDistribution
}

type Store struct {
	kv   storage.KV
	mu   sync.Mutex // serializes appends and their writes
	snap atomic.Pointer[Snapshot]
}

// New returns a store holding the seed collections. Call Load to replace
// them with whatever the device has persisted.
func New(kv storage.KV, ds *seed.Dataset) *Store {
	s := &Store{kv: kv}
	initial := &Snapshot{}
	if ds != nil {
		initial.Disasters = ds.Disasters
		initial.Agriculture = ds.Agriculture
		initial.Aid = ds.Aid
	}
	s.snap.Store(initial)
	return s
}

func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Load replaces each collection with its persisted value when present.
// Read and decode failures are logged and leave the seed collection in place.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.snap.Load()
	for _, kind := range models.Kinds {
		var err error
		switch kind {
		case models.KindDisaster:
			err = loadInto(ctx, s.kv, kind, &next.Disasters)
		case models.KindAgriculture:
			err = loadInto(ctx, s.kv, kind, &next.Agriculture)
		case models.KindAid:
			err = loadInto(ctx, s.kv, kind, &next.Aid)
		}
		if err != nil {
			slog.Error("failed to load stored collection, keeping seed data", "kind", kind, "error", err)
		}
	}
	s.snap.Store(&next)

	slog.Info("record store loaded",
		"disaster_surveys", len(next.Disasters),
		"agriculture_surveys", len(next.Agriculture),
		"aid_distributions", len(next.Aid),
	)
}

func loadInto[T any](ctx context.Context, kv storage.KV, kind models.Kind, dst *[]T) error {
	raw, ok, err := kv.Get(ctx, kind.StorageKey())
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return fmt.Errorf("error decoding %s: %w", kind.StorageKey(), err)
	}
	// A stored null is treated like a missing key; "[]" still clears the seed.
	if items == nil {
		return nil
	}
	*dst = items
	return nil
}

// Append adds rec to the end of its collection and writes the whole
// collection back to storage. A failed write is logged; the record stays in
// memory either way.
func (s *Store) Append(ctx context.Context, rec models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := *cur

	var collection any
	switch r := rec.(type) {
	case models.DisasterSurvey:
		next.Disasters = appendCopy(cur.Disasters, r)
		collection = next.Disasters
	case models.AgricultureSurvey:
		next.Agriculture = appendCopy(cur.Agriculture, r)
		collection = next.Agriculture
	case models.AidDistribution:
		next.Aid = appendCopy(cur.Aid, r)
		collection = next.Aid
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, rec)
	}
	s.snap.Store(&next)

	if err := s.persist(ctx, rec.Kind(), collection); err != nil {
		slog.Error("failed to persist collection, continuing in memory", "kind", rec.Kind(), "id", rec.ID(), "error", err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, kind models.Kind, collection any) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", kind.StorageKey(), err)
	}
	return s.kv.Set(ctx, kind.StorageKey(), string(data))
}

// appendCopy never shares a backing array with a published snapshot.
func appendCopy[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}
