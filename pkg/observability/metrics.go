package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// PutMetricDataAPI is the part of the CloudWatch client Metrics uses.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics handles application metrics and monitoring. A nil *Metrics records
// nothing.
type Metrics struct {
	namespace string
	client    PutMetricDataAPI
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client PutMetricDataAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordRequest records latency and count for one HTTP request
func (m *Metrics) RecordRequest(ctx context.Context, route, method string, status int, latency time.Duration) {
	if m == nil || m.client == nil {
		return
	}

	dimensions := []types.Dimension{
		{Name: aws.String("Route"), Value: aws.String(route)},
		{Name: aws.String("Method"), Value: aws.String(method)},
		{Name: aws.String("StatusClass"), Value: aws.String(strconv.Itoa(status/100) + "xx")},
	}
	now := time.Now()

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("RequestLatency"),
				Dimensions: dimensions,
				Value:      aws.Float64(float64(latency.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  aws.Time(now),
			},
			{
				MetricName: aws.String("RequestCount"),
				Dimensions: dimensions,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(now),
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		// Log error but don't fail the operation
		m.logger.Warn("Failed to send metrics", zap.Error(err), zap.String("route", route))
	}
}

// Middleware records a metric for every request once it has been served.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.RecordRequest(context.WithoutCancel(r.Context()), routePattern(r), r.Method, responseStatus(ww), time.Since(start))
	})
}
