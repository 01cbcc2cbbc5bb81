//go:build e2e

package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// InfluxClient reads back what the scheduler's influx sink wrote.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
}

// NewInfluxClient creates a client for a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	return &InfluxClient{org: org, bucket: bucket, client: influxdb2.NewClient(url, token)}
}

// CountPoints returns the number of values of measurement.field written in
// the last hour, optionally filtered on one tag.
func (c *InfluxClient) CountPoints(ctx context.Context, measurement, field, tag, value string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-1h) |> filter(fn: (r) => r._measurement == %q and r._field == %q)`, c.bucket, measurement, field)
	if tag != "" {
		flux += fmt.Sprintf(` |> filter(fn: (r) => r[%q] == %q)`, tag, value)
	}
	res, err := c.client.QueryAPI(c.org).Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
