package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/chart"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/metrics"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/report"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/summary"
)

type Report struct {
	Filename    string
	ContentType string
	Body        []byte
	// URL is set when the report was archived.
	URL string
}

type ReportService struct {
	summaries *summary.Assembler
	charts    chart.Renderer
	composer  report.Composer
	archive   Archive
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewReportService(summaries *summary.Assembler, charts chart.Renderer, composer report.Composer, m *metrics.Metrics) *ReportService {
	return &ReportService{summaries: summaries, charts: charts, composer: composer, metrics: m, now: time.Now}
}

func (s *ReportService) Generate(ctx context.Context, datasetID int64) (Report, error) {
	sum, err := s.summaries.ForDataset(ctx, datasetID)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	body, err := s.render(sum)
	if err != nil {
		var re *domain.RenderError
		stage := "report"
		if errors.As(err, &re) {
			stage = re.Stage
		}
		s.metrics.RenderFailures.WithLabelValues(stage).Inc()
		return Report{}, err
	}
	s.metrics.ReportDuration.Observe(time.Since(start).Seconds())

	rep := Report{
		Filename:    "report_" + sum.Filename + ".pdf",
		ContentType: "application/pdf",
		Body:        body,
	}
	if s.archive != nil {
		url, err := s.archive.ArchiveReport(ctx, datasetID, rep.Filename, body)
		if err != nil {
			log.Warn().Err(err).Int64("dataset_id", datasetID).Msg("report archive failed (ignored)")
		} else {
			rep.URL = url
		}
	}
	return rep, nil
}

func (s *ReportService) render(sum domain.Summary) ([]byte, error) {
	category, err := s.charts.CategoryChart(sum.TypeDistribution)
	if err != nil {
		return nil, asRenderError("category chart", err)
	}
	averages, err := s.charts.AveragesChart(sum.AvgFlowrate, sum.AvgPressure, sum.AvgTemperature)
	if err != nil {
		return nil, asRenderError("averages chart", err)
	}
	body, err := s.composer.Compose(sum, report.Charts{Category: category, Averages: averages}, s.now())
	if err != nil {
		return nil, asRenderError("report", err)
	}
	return body, nil
}

func asRenderError(stage string, err error) error {
	var re *domain.RenderError
	if errors.As(err, &re) {
		return err
	}
	return &domain.RenderError{Stage: stage, Err: err}
}
