package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

const namespace = "equipment"

type Metrics struct {
	Registry *prometheus.Registry

	DatasetsIngested prometheus.Counter
	RecordsIngested  prometheus.Counter
	IngestRejected   *prometheus.CounterVec
	ReportDuration   prometheus.Histogram
	RenderFailures   *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// New registers all collectors on a private registry so several instances
// can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		DatasetsIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_ingested_total",
			Help:      "Datasets stored after a successful upload.",
		}),
		RecordsIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Equipment rows stored.",
		}),
		IngestRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rejected_total",
			Help:      "Uploads rejected, by reason.",
		}, []string{"reason"}),
		ReportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time to render charts and compose a report.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		RenderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Chart or report synthesis failures, by stage.",
		}, []string{"stage"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RejectReason classifies a failed ingestion for the rejected counter.
func RejectReason(err error) string {
	var mc *domain.MissingColumnsError
	var rp *domain.RowParseError
	var uf *domain.UnsupportedFormatError
	var mf *domain.MalformedFileError
	switch {
	case errors.As(err, &mc):
		return "missing_columns"
	case errors.As(err, &rp):
		return "row_parse"
	case errors.As(err, &uf):
		return "unsupported_format"
	case errors.As(err, &mf):
		return "malformed_file"
	default:
		return "storage"
	}
}
