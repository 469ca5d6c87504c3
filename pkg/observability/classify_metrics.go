package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal         = "spanlight.classify.files.total"
	metricBytesTotal         = "spanlight.classify.bytes.total"
	metricAnnotationsTotal   = "spanlight.classify.annotations.total"
	metricParseFailuresTotal = "spanlight.classify.parse_failures.total"
	metricFileDuration       = "spanlight.classify.file.duration.seconds"

	attrLanguage = "language"
)

// ClassifyMetrics holds OTel instruments for classification-specific metrics.
// The language attribute stays low-cardinality: it is always one of the
// registered grammar names.
type ClassifyMetrics struct {
	filesTotal       metric.Int64Counter
	bytesTotal       metric.Int64Counter
	annotationsTotal metric.Int64Counter
	parseFailures    metric.Int64Counter
	fileDuration     metric.Float64Histogram
}

// NewClassifyMetrics creates classification metric instruments from the given meter.
func NewClassifyMetrics(mt metric.Meter) (*ClassifyMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Total files classified"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	bytesTotal, err := mt.Int64Counter(metricBytesTotal,
		metric.WithDescription("Total source bytes classified"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesTotal, err)
	}

	annotations, err := mt.Int64Counter(metricAnnotationsTotal,
		metric.WithDescription("Total annotations produced"),
		metric.WithUnit("{annotation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAnnotationsTotal, err)
	}

	failures, err := mt.Int64Counter(metricParseFailuresTotal,
		metric.WithDescription("Files that fell back to plain text"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricParseFailuresTotal, err)
	}

	fileDur, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file classification duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	return &ClassifyMetrics{
		filesTotal:       files,
		bytesTotal:       bytesTotal,
		annotationsTotal: annotations,
		parseFailures:    failures,
		fileDuration:     fileDur,
	}, nil
}

// RecordFile records one classified file. Safe to call on a nil receiver (no-op).
func (cm *ClassifyMetrics) RecordFile(
	ctx context.Context, language string, size, annotations int64, duration time.Duration,
) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrLanguage, language))

	cm.filesTotal.Add(ctx, 1, attrs)
	cm.bytesTotal.Add(ctx, size, attrs)
	cm.annotationsTotal.Add(ctx, annotations, attrs)
	cm.fileDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordParseFailure records a file that could not be parsed and degraded to
// plain text. Safe to call on a nil receiver (no-op).
func (cm *ClassifyMetrics) RecordParseFailure(ctx context.Context, language string) {
	if cm == nil {
		return
	}

	cm.parseFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(attrLanguage, language)))
}
