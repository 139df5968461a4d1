// Package observability provides application metrics backed by CloudWatch.
package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const putTimeout = 5 * time.Second

// Metrics publishes counters and timers to CloudWatch. Publishing is fire
// and forget; a metrics outage must never slow down or fail a request.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a new CloudWatch metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// Increment records a single occurrence of the metric
func (m *Metrics) Increment(metric, label string) {
	m.put(types.MetricDatum{
		MetricName: aws.String(metric),
		Dimensions: []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(label)},
		},
		Value:     aws.Float64(1),
		Unit:      types.StandardUnitCount,
		Timestamp: aws.Time(time.Now()),
	})
}

// StartTimer starts a duration measurement for the metric
func (m *Metrics) StartTimer(metric, label string) Timer {
	return &cloudwatchTimer{
		metrics: m,
		metric:  metric,
		label:   label,
		started: time.Now(),
	}
}

func (m *Metrics) put(datum types.MetricDatum) {
	if m.client == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
		defer cancel()

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: []types.MetricDatum{datum},
		})
		if err != nil {
			m.logger.Warn("Failed to publish metric",
				zap.String("metric", aws.ToString(datum.MetricName)),
				zap.Error(err))
		}
	}()
}

// Timer measures the duration of one operation
type Timer interface {
	Stop()
}

type cloudwatchTimer struct {
	metrics *Metrics
	metric  string
	label   string
	started time.Time
}

func (t *cloudwatchTimer) Stop() {
	elapsed := time.Since(t.started)
	t.metrics.put(types.MetricDatum{
		MetricName: aws.String(t.metric),
		Dimensions: []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(t.label)},
		},
		Value:     aws.Float64(float64(elapsed.Milliseconds())),
		Unit:      types.StandardUnitMilliseconds,
		Timestamp: aws.Time(time.Now()),
	})
}

// NoopMetrics discards all metrics. Used when metrics are disabled.
type NoopMetrics struct{}

// Increment does nothing
func (NoopMetrics) Increment(metric, label string) {}

// StartTimer returns a timer that does nothing
func (NoopMetrics) StartTimer(metric, label string) Timer { return noopTimer{} }

type noopTimer struct{}

func (noopTimer) Stop() {}
