package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gianni-inc/QuantumGianni/internal/qops"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "qops.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(source string) Run {
	p := qops.DefaultParams()
	return NewRun(source, p, qops.Orchestrate(p), 1500*time.Microsecond)
}

func TestOpenMigrates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qops.db")

	db, err := Open(path)
	require.NoError(t, err)

	v, err := db.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
	require.NoError(t, db.Close())

	// Reopening an existing file must not disturb it.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	v, err = db.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestNewRun(t *testing.T) {
	p := qops.DefaultParams()
	b := qops.Orchestrate(p)
	r := NewRun(SourceSampler, p, b, 1500*time.Microsecond)

	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Unix(), r.CreatedAt, 5)
	assert.Equal(t, SourceSampler, r.Source)
	assert.Equal(t, p.X, r.X)
	assert.Equal(t, p.Depth, r.Depth)
	assert.Equal(t, b.Recursive, r.Recursive)
	assert.Equal(t, b.Total, r.Result)
	assert.Equal(t, int64(1500), r.DurationUS)
}

func TestSaveRunRoundTrip(t *testing.T) {
	db := openTestDB(t)

	want := sampleRun(SourceCLI)
	require.NoError(t, db.SaveRun(want))

	got, err := db.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	if diff := cmp.Diff(want, got[0], cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("run round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRunsBatch(t *testing.T) {
	db := openTestDB(t)

	runs := make([]Run, 5)
	for i := range runs {
		runs[i] = sampleRun(SourceSweep)
	}
	require.NoError(t, db.SaveRuns(runs))

	n, err := db.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// An empty batch is a no-op, not an error.
	require.NoError(t, db.SaveRuns(nil))
}

func TestRecentRunsOrder(t *testing.T) {
	db := openTestDB(t)

	for _, ts := range []int64{100, 300, 200} {
		r := sampleRun(SourceSampler)
		r.CreatedAt = ts
		require.NoError(t, db.SaveRun(r))
	}

	got, err := db.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(300), got[0].CreatedAt)
	assert.Equal(t, int64(200), got[1].CreatedAt)
}

func TestRecentRunsEmpty(t *testing.T) {
	db := openTestDB(t)

	got, err := db.RecentRuns(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountRunsEmpty(t *testing.T) {
	db := openTestDB(t)

	n, err := db.CountRuns()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("profile_seed", "12345"))
	v, err := db.GetMeta("profile_seed")
	require.NoError(t, err)
	assert.Equal(t, "12345", v)

	// INSERT OR REPLACE semantics.
	require.NoError(t, db.SaveMeta("profile_seed", "67890"))
	v, err = db.GetMeta("profile_seed")
	require.NoError(t, err)
	assert.Equal(t, "67890", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}
