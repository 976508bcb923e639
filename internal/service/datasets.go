package service

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/aggregate"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/ingest"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/metrics"
)

type DatasetStore interface {
	CreateDatasetWithRecords(ctx context.Context, filename string, uploadedAt time.Time, items []domain.Equipment) (domain.Dataset, error)
	DeleteDataset(ctx context.Context, id int64) error
}

type DatasetService struct {
	store    DatasetStore
	policy   ingest.Policy
	archive  Archive
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewDatasetService(store DatasetStore, policy ingest.Policy, m *metrics.Metrics) *DatasetService {
	return &DatasetService{store: store, policy: policy, metrics: m, now: time.Now}
}

// Ingest validates raw tabular bytes and stores them as a new dataset.
// Validation failures and storage errors leave nothing behind.
func (s *DatasetService) Ingest(ctx context.Context, filename string, raw []byte) (domain.Dataset, error) {
	filename = cleanFilename(filename)

	ds, items, err := s.ingest(ctx, filename, raw)
	if err != nil {
		s.metrics.IngestRejected.WithLabelValues(metrics.RejectReason(err)).Inc()
		return domain.Dataset{}, err
	}
	s.metrics.DatasetsIngested.Inc()
	s.metrics.RecordsIngested.Add(float64(len(items)))

	logger := log.With().Int64("dataset_id", ds.ID).Str("filename", ds.Filename).Logger()
	logger.Info().Int("records", len(items)).Msg("dataset ingested")

	if s.archive != nil {
		if err := s.archive.ArchiveUpload(ctx, ds.ID, ds.Filename, raw); err != nil {
			logger.Warn().Err(err).Msg("archive upload failed (ignored)")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyDatasetIngested(ctx, aggregate.Summarize(ds, items)); err != nil {
			logger.Warn().Err(err).Msg("ingest notification failed (ignored)")
		}
	}
	return ds, nil
}

func (s *DatasetService) ingest(ctx context.Context, filename string, raw []byte) (domain.Dataset, []domain.Equipment, error) {
	format, err := ingest.FormatFromFilename(filename)
	if err != nil {
		return domain.Dataset{}, nil, err
	}
	items, err := ingest.Parse(raw, format, s.policy)
	if err != nil {
		return domain.Dataset{}, nil, err
	}
	ds, err := s.store.CreateDatasetWithRecords(ctx, filename, s.now(), items)
	if err != nil {
		return domain.Dataset{}, nil, err
	}
	return ds, items, nil
}

// Delete removes the dataset and its records, then any archived objects.
func (s *DatasetService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteDataset(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("dataset_id", id).Msg("dataset deleted")

	if s.archive != nil {
		if err := s.archive.DeleteDatasetObjects(ctx, id); err != nil {
			log.Warn().Err(err).Int64("dataset_id", id).Msg("archive cleanup failed (ignored)")
		}
	}
	return nil
}

// cleanFilename drops any client supplied directory part.
func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
