package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/database"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return db
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

var scenarioA = []domain.Equipment{
	{Name: "Pump1", Type: "Pump", Flowrate: 10, Pressure: 2, Temperature: 25},
	{Name: "Pump2", Type: "Pump", Flowrate: 20, Pressure: 3, Temperature: 30},
	{Name: "Valve1", Type: "Valve", Flowrate: 5, Pressure: 1, Temperature: 20},
}

func TestCreateAndReadBack(t *testing.T) {
	db := newTestDB(t)
	repos := New(db)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ds, err := repos.CreateDatasetWithRecords(ctx, "plant.csv", at, scenarioA)
	require.NoError(t, err)
	assert.NotZero(t, ds.ID)

	got, err := repos.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "plant.csv", got.Filename)
	assert.True(t, at.Equal(got.UploadedAt), "uploaded at %v", got.UploadedAt)

	records, err := repos.RecordsFor(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, scenarioA, records)
}

func TestCreateEmptyDataset(t *testing.T) {
	db := newTestDB(t)
	repos := New(db)
	ctx := context.Background()

	ds, err := repos.CreateDatasetWithRecords(ctx, "empty.csv", time.Now(), nil)
	require.NoError(t, err)

	records, err := repos.RecordsFor(ctx, ds.ID)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCreateManyRowsKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	repos := New(db)
	ctx := context.Background()

	items := make([]domain.Equipment, 1234)
	for i := range items {
		items[i] = domain.Equipment{Name: fmt.Sprintf("E-%04d", i), Type: "Pump", Flowrate: float64(i)}
	}

	ds, err := repos.CreateDatasetWithRecords(ctx, "big.csv", time.Now(), items)
	require.NoError(t, err)

	records, err := repos.RecordsFor(ctx, ds.ID)
	require.NoError(t, err)
	require.Len(t, records, len(items))
	assert.Equal(t, items[0], records[0])
	assert.Equal(t, items[len(items)-1], records[len(records)-1])
}

func TestCreateIsAtomic(t *testing.T) {
	db := newTestDB(t)
	repos := New(db)
	ctx := context.Background()

	_, err := db.Exec(`CREATE TRIGGER reject_boom BEFORE INSERT ON equipment
		WHEN NEW.name = 'boom'
		BEGIN SELECT RAISE(ABORT, 'boom rejected'); END`)
	require.NoError(t, err)

	items := append(append([]domain.Equipment{}, scenarioA...), domain.Equipment{Name: "boom", Type: "Pump"})
	_, err = repos.CreateDatasetWithRecords(ctx, "bad.csv", time.Now(), items)
	require.Error(t, err)

	assert.Zero(t, count(t, db, "datasets"))
	assert.Zero(t, count(t, db, "equipment"))
}

func TestRecentDatasetsOrdering(t *testing.T) {
	db := newTestDB(t)
	repos := New(db)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := repos.CreateDatasetWithRecords(ctx, "old.csv", base, scenarioA)
	require.NoError(t, err)
	tieA, err := repos.CreateDatasetWithRecords(ctx, "tie-a.csv", base.Add(time.Hour), scenarioA)
	require.NoError(t, err)
	tieB, err := repos.CreateDatasetWithRecords(ctx, "tie-b.csv", base.Add(time.Hour), scenarioA)
	require.NoError(t, err)

	list, err := repos.RecentDatasets(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{tieB.ID, tieA.ID, first.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})

	latest, err := repos.LatestDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, tieB.ID, latest.ID)

	list, err = repos.RecentDatasets(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestNotFound(t *testing.T) {
	db := newTestDB(t)
	repos := New(db)
	ctx := context.Background()

	_, err := repos.LatestDataset(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repos.GetDataset(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repos.DeleteDataset(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := repos.RecentDatasets(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repos := New(db)
	ctx := context.Background()

	keep, err := repos.CreateDatasetWithRecords(ctx, "keep.csv", time.Now(), scenarioA)
	require.NoError(t, err)
	drop, err := repos.CreateDatasetWithRecords(ctx, "drop.csv", time.Now(), scenarioA)
	require.NoError(t, err)

	require.NoError(t, repos.DeleteDataset(ctx, drop.ID))

	assert.Equal(t, 1, count(t, db, "datasets"))
	assert.Equal(t, len(scenarioA), count(t, db, "equipment"))

	records, err := repos.RecordsFor(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, records, len(scenarioA))
}
