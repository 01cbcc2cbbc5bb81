package metrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	coremetrics "github.com/kilianp07/groundsched/core/metrics"
)

// PutMetricDataAPI is the part of the CloudWatch client used by the sink.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSink publishes counters as CloudWatch custom metrics.
type CloudWatchSink struct {
	api     PutMetricDataAPI
	timeout time.Duration
}

// CloudWatchConfig selects the region and credentials profile. Empty values
// fall back to the SDK's default chain.
type CloudWatchConfig struct {
	Region  string        `json:"region"`
	Profile string        `json:"profile"`
	Timeout time.Duration `json:"timeout"`
}

// NewCloudWatchSink builds a sink from the shared AWS configuration.
func NewCloudWatchSink(ctx context.Context, cfg CloudWatchConfig) (*CloudWatchSink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewCloudWatchSinkWithClient(cloudwatch.NewFromConfig(awsCfg), cfg.Timeout), nil
}

// NewCloudWatchSinkWithClient wraps an existing client.
func NewCloudWatchSinkWithClient(api PutMetricDataAPI, timeout time.Duration) *CloudWatchSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CloudWatchSink{api: api, timeout: timeout}
}

// RecordCounter sends one datum in ev.Namespace.
func (s *CloudWatchSink) RecordCounter(ev coremetrics.CounterEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	unit := types.StandardUnit(ev.Unit)
	if ev.Unit == "" {
		unit = types.StandardUnitCount
	}
	datum := types.MetricDatum{
		MetricName: aws.String(ev.Name),
		Value:      aws.Float64(ev.Value),
		Unit:       unit,
		Timestamp:  aws.Time(ev.Time),
		Dimensions: dimensions(ev.Dimensions),
	}
	_, err := s.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(ev.Namespace),
		MetricData: []types.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", ev.Name, err)
	}
	return nil
}

func dimensions(m map[string]string) []types.Dimension {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.Dimension, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Dimension{Name: aws.String(k), Value: aws.String(m[k])})
	}
	return out
}
