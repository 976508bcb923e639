package summary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/database"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/repository"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) LatestDataset(ctx context.Context) (domain.Dataset, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Dataset), args.Error(1)
}

func (m *mockStore) RecentDatasets(ctx context.Context, limit int) ([]domain.Dataset, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]domain.Dataset)
	return list, args.Error(1)
}

func (m *mockStore) GetDataset(ctx context.Context, id int64) (domain.Dataset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Dataset), args.Error(1)
}

func (m *mockStore) RecordsFor(ctx context.Context, datasetID int64) ([]domain.Equipment, error) {
	args := m.Called(ctx, datasetID)
	list, _ := args.Get(0).([]domain.Equipment)
	return list, args.Error(1)
}

var scenarioA = []domain.Equipment{
	{Name: "Pump1", Type: "Pump", Flowrate: 10, Pressure: 2, Temperature: 25},
	{Name: "Pump2", Type: "Pump", Flowrate: 20, Pressure: 3, Temperature: 30},
	{Name: "Valve1", Type: "Valve", Flowrate: 5, Pressure: 1, Temperature: 20},
}

func TestLatest(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	ds := domain.Dataset{ID: 3, Filename: "plant.csv", UploadedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)}
	store.On("LatestDataset", ctx).Return(ds, nil)
	store.On("RecordsFor", ctx, int64(3)).Return(scenarioA, nil)

	s, err := NewAssembler(store, 0).Latest(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), s.DatasetID)
	assert.InDelta(t, 11.67, s.AvgFlowrate, 0.005)
	assert.InDelta(t, 2.0, s.AvgPressure, 1e-9)
	assert.InDelta(t, 25.0, s.AvgTemperature, 1e-9)
	assert.Equal(t, domain.Distribution{"Pump": 2, "Valve": 1}, s.TypeDistribution)
	assert.Equal(t, scenarioA, s.Records)
	store.AssertExpectations(t)
}

func TestLatestNotFound(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("LatestDataset", ctx).Return(domain.Dataset{}, fmt.Errorf("latest: %w", domain.ErrNotFound))

	_, err := NewAssembler(store, 5).Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "RecordsFor", mock.Anything, mock.Anything)
}

func TestHistoryPropagatesRecordErrors(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	boom := errors.New("connection reset")
	store.On("RecentDatasets", ctx, 5).Return([]domain.Dataset{{ID: 2}, {ID: 1}}, nil)
	store.On("RecordsFor", ctx, int64(2)).Return(nil, boom)

	_, err := NewAssembler(store, 5).History(ctx, 5)
	assert.ErrorIs(t, err, boom)
}

func TestHistoryClampsLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 5}, {-3, 5}, {1, 1}, {3, 3}, {5, 5}, {50, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %d", tt.in), func(t *testing.T) {
			ctx := context.Background()
			store := new(mockStore)
			store.On("RecentDatasets", ctx, tt.want).Return([]domain.Dataset{}, nil)

			out, err := NewAssembler(store, 5).History(ctx, tt.in)
			require.NoError(t, err)
			assert.Empty(t, out)
			store.AssertExpectations(t)
		})
	}
}

func newRepos(t *testing.T) *repository.Repos {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "summary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return repository.New(db)
}

func TestHistoryReturnsFiveNewest(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		items := scenarioA[:1+i%3]
		_, err := repos.CreateDatasetWithRecords(ctx, fmt.Sprintf("run-%d.csv", i), base.Add(time.Duration(i)*time.Minute), items)
		require.NoError(t, err)
	}

	history, err := NewAssembler(repos, DefaultHistoryLimit).History(ctx, DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 5)

	var names []string
	for i, s := range history {
		names = append(names, s.Filename)
		assert.Equal(t, s.RecordCount(), s.TypeDistribution.Total())
		if i > 0 {
			assert.True(t, history[i-1].UploadedAt.After(s.UploadedAt))
		}
	}
	assert.Equal(t, []string{"run-6.csv", "run-5.csv", "run-4.csv", "run-3.csv", "run-2.csv"}, names)
}

func TestForDatasetReflectsStoredRows(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	ds, err := repos.CreateDatasetWithRecords(ctx, "plant.csv", time.Now(), scenarioA)
	require.NoError(t, err)

	a := NewAssembler(repos, 5)
	s, err := a.ForDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.RecordCount())

	_, err = a.ForDataset(ctx, ds.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmptyDatasetSummary(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	ds, err := repos.CreateDatasetWithRecords(ctx, "empty.csv", time.Now(), nil)
	require.NoError(t, err)

	s, err := NewAssembler(repos, 5).ForDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Zero(t, s.AvgFlowrate)
	assert.Empty(t, s.TypeDistribution)
	assert.NotNil(t, s.Records)
}
