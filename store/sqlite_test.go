package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optfolio/optfolio"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "positions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_EmptySnapshot(t *testing.T) {
	s := newTestSQLiteStore(t)
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestSQLiteStore_ApplyAndReload(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Apply("run-1", testMergeResult()))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap, 2)

	p, ok := snap["XYZ|2025-06-20|100-110|CALL"]
	require.True(t, ok, "vertical position missing")
	assert.Equal(t, optfolio.Vertical, p.Strategy)
	assert.Equal(t, "XYZ", p.Ticker)
	assert.Equal(t, optfolio.MustParseDate("2025-06-20"), p.Expiration)
	require.Len(t, p.Legs, 2)
	assert.True(t, p.Legs[0].Strike.Equal(optfolio.USD(100)))
	assert.True(t, p.Legs[1].Quantity.Equal(optfolio.Q(-5)))

	cash, ok := snap[optfolio.CashKey]
	require.True(t, ok, "cash position missing")
	assert.True(t, cash.Price.Equal(optfolio.USD(50)))
}

func TestSQLiteStore_ApplyRewritesLegs(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Apply("run-1", testMergeResult()))

	update := optfolio.MergeResult{
		Updated: []optfolio.LegUpdate{{
			Key:         "XYZ|2025-06-20|100-110|CALL",
			Strategy:    optfolio.Vertical,
			Strike:      optfolio.USD(100),
			OptionType:  optfolio.Call,
			Quantity:    optfolio.Q(8),
			Price:       optfolio.USD(2.50),
			LastTxnDate: optfolio.MustParseDate("2025-06-05"),
		}},
	}
	require.NoError(t, s.Apply("run-2", update))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	p := snap["XYZ|2025-06-20|100-110|CALL"]
	require.Len(t, p.Legs, 2, "rewrite must not duplicate legs")
	assert.True(t, p.Legs[0].Quantity.Equal(optfolio.Q(8)), "long leg quantity = %s", p.Legs[0].Quantity)
	assert.Equal(t, optfolio.MustParseDate("2025-06-05"), p.LastTxnDate)

	// No orphan leg rows survive the rewrite.
	var legs int64
	require.NoError(t, s.db.Model(&dbLeg{}).Count(&legs).Error)
	assert.EqualValues(t, 2, legs)
}

func TestSQLiteStore_RecordsRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Apply("run-1", testMergeResult()))
	require.NoError(t, s.Apply("run-2", optfolio.MergeResult{Skipped: 3}))

	var runs []dbRun
	require.NoError(t, s.db.Order("run_id").Find(&runs).Error)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, 2, runs[0].Created)
	assert.Equal(t, "run-2", runs[1].RunID)
	assert.Equal(t, 3, runs[1].Skipped)
}
