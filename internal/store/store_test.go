package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/seed"
	"github.com/mr1hm/go-field-mesh/internal/storage"
)

// failingKV fails every operation.
type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("disk unavailable")
}
func (failingKV) Set(ctx context.Context, key, value string) error { return errors.New("disk full") }
func (failingKV) Remove(ctx context.Context, key string) error      { return errors.New("disk full") }
func (failingKV) Close() error                                      { return nil }

func loadSeed(t *testing.T) *seed.Dataset {
	ds, err := seed.Load(time.Now())
	require.NoError(t, err)
	return ds
}

func TestNew_UsesSeed(t *testing.T) {
	s := New(storage.NewMemoryKV(), loadSeed(t))

	snap := s.Snapshot()
	assert.Len(t, snap.Disasters, 3)
	assert.Len(t, snap.Agriculture, 2)
	assert.Len(t, snap.Aid, 3)
}

func TestAppend_ThenFreshLoad(t *testing.T) {
	kv, err := storage.NewSQLiteKV(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	s := New(kv, loadSeed(t))
	s.Load(ctx)

	survey := models.DisasterSurvey{
		SurveyID:       "DS-1760000000000",
		DigiPin:        "DP-HACK-A1-003",
		Critical:       5,
		Trapped:        8,
		Injured:        12,
		DisasterType:   models.DisasterEarthquake,
		LocationStatus: models.LocationField,
		TrustScore:     91,
		TrustStatus:    models.TrustGreen,
		Timestamp:      time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.Append(ctx, survey))

	fresh := New(kv, loadSeed(t))
	fresh.Load(ctx)

	disasters := fresh.Snapshot().Disasters
	require.Len(t, disasters, 4)
	assert.Equal(t, survey, disasters[3])
}

func TestAppend_EachKindPersistsUnderItsKey(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	s := New(kv, nil)

	require.NoError(t, s.Append(ctx, models.AgricultureSurvey{SurveyID: "AG-1", Crop: "Rice"}))
	require.NoError(t, s.Append(ctx, models.AidDistribution{AidID: "AID-1", Quantity: 3}))

	_, ok, _ := kv.Get(ctx, "disasterSurveys")
	assert.False(t, ok)

	raw, ok, _ := kv.Get(ctx, "agricultureSurveys")
	require.True(t, ok)
	assert.Contains(t, raw, `"surveyId":"AG-1"`)

	raw, ok, _ = kv.Get(ctx, "aidDistributions")
	require.True(t, ok)
	assert.Contains(t, raw, `"aidId":"AID-1"`)
}

func TestAppend_NoDeduplication(t *testing.T) {
	s := New(storage.NewMemoryKV(), nil)
	ctx := context.Background()

	aid := models.AidDistribution{AidID: "AID-1"}
	require.NoError(t, s.Append(ctx, aid))
	require.NoError(t, s.Append(ctx, aid))

	assert.Len(t, s.Snapshot().Aid, 2)
}

func TestAppend_WriteFailureKeepsRecordInMemory(t *testing.T) {
	s := New(failingKV{}, loadSeed(t))

	err := s.Append(context.Background(), models.DisasterSurvey{SurveyID: "DS-9"})
	require.NoError(t, err)

	disasters := s.Snapshot().Disasters
	require.Len(t, disasters, 4)
	assert.Equal(t, "DS-9", disasters[3].SurveyID)
}

func TestAppend_UnknownKind(t *testing.T) {
	s := New(storage.NewMemoryKV(), nil)

	err := s.Append(context.Background(), &models.DisasterSurvey{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestAppend_DoesNotMutatePublishedSnapshot(t *testing.T) {
	s := New(storage.NewMemoryKV(), loadSeed(t))
	before := s.Snapshot()

	require.NoError(t, s.Append(context.Background(), models.DisasterSurvey{SurveyID: "DS-9"}))

	assert.Len(t, before.Disasters, 3)
	assert.Len(t, s.Snapshot().Disasters, 4)
}

func TestLoad_ReadFailureFallsBackToSeed(t *testing.T) {
	s := New(failingKV{}, loadSeed(t))
	s.Load(context.Background())

	snap := s.Snapshot()
	assert.Len(t, snap.Disasters, 3)
	assert.Len(t, snap.Aid, 3)
}

func TestLoad_MalformedEntryKeepsSeedForThatKindOnly(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "disasterSurveys", "{not json"))
	require.NoError(t, kv.Set(ctx, "aidDistributions", `[{"aidId":"AID-77","quantity":4,"verified":true}]`))

	s := New(kv, loadSeed(t))
	s.Load(ctx)

	snap := s.Snapshot()
	assert.Len(t, snap.Disasters, 3)
	assert.Len(t, snap.Agriculture, 2)
	require.Len(t, snap.Aid, 1)
	assert.Equal(t, "AID-77", snap.Aid[0].AidID)
}

func TestLoad_EmptyPersistedCollectionReplacesSeed(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "agricultureSurveys", "[]"))

	s := New(kv, loadSeed(t))
	s.Load(ctx)

	assert.Empty(t, s.Snapshot().Agriculture)
}

func TestLoad_NullPersistedCollectionKeepsSeed(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "disasterSurveys", "null"))

	s := New(kv, loadSeed(t))
	s.Load(ctx)

	disasters := s.Snapshot().Disasters
	require.Len(t, disasters, 3)
	assert.Equal(t, "DS-001", disasters[0].SurveyID)
}
