package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/chart"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/ingest"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/metrics"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/report"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/repository"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/summary"
)

// Archive keeps copies of uploads and reports outside the database.
type Archive interface {
	ArchiveUpload(ctx context.Context, datasetID int64, name string, raw []byte) error
	ArchiveReport(ctx context.Context, datasetID int64, name string, body []byte) (string, error)
	DeleteDatasetObjects(ctx context.Context, datasetID int64) error
}

type Notifier interface {
	NotifyDatasetIngested(ctx context.Context, s domain.Summary) error
}

type Options struct {
	Policy       ingest.Policy
	HistoryLimit int
	Report       report.Options
	Theme        chart.Theme
	Archive      Archive
	Notifier     Notifier
	Metrics      *metrics.Metrics
	Clock        func() time.Time
}

type Services struct {
	Repos     *repository.Repos
	Summaries *summary.Assembler
	Datasets  *DatasetService
	Reports   *ReportService
	Metrics   *metrics.Metrics
}

func New(db *sqlx.DB, opts Options) (*Services, error) {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Theme.DPI == 0 {
		opts.Theme = chart.DefaultTheme()
	}

	renderer, err := chart.NewGGRenderer(opts.Theme)
	if err != nil {
		return nil, fmt.Errorf("chart renderer: %w", err)
	}

	repos := repository.New(db)
	summaries := summary.NewAssembler(repos, opts.HistoryLimit)
	return &Services{
		Repos:     repos,
		Summaries: summaries,
		Datasets: &DatasetService{
			store:    repos,
			policy:   opts.Policy,
			archive:  opts.Archive,
			notifier: opts.Notifier,
			metrics:  opts.Metrics,
			now:      opts.Clock,
		},
		Reports: &ReportService{
			summaries: summaries,
			charts:    renderer,
			composer:  report.NewPDFComposer(opts.Report),
			archive:   opts.Archive,
			metrics:   opts.Metrics,
			now:       opts.Clock,
		},
		Metrics: opts.Metrics,
	}, nil
}
