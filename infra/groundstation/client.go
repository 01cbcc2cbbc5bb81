// Package groundstation adapts the AWS Ground Station API to the scheduler's
// authority capabilities.
package groundstation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/groundstation"
	"github.com/aws/smithy-go"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/factory"
)

// API is the subset of the Ground Station client used here.
type API interface {
	groundstation.ListGroundStationsAPIClient
	groundstation.ListContactsAPIClient
	ReserveContact(ctx context.Context, in *groundstation.ReserveContactInput, optFns ...func(*groundstation.Options)) (*groundstation.ReserveContactOutput, error)
	DescribeContact(ctx context.Context, in *groundstation.DescribeContactInput, optFns ...func(*groundstation.Options)) (*groundstation.DescribeContactOutput, error)
}

// Config selects the AWS region and credentials. Empty values use the SDK
// default chain.
type Config struct {
	Region  string `json:"region"`
	Profile string `json:"profile"`
	// SatelliteID narrows ListGroundStations to stations usable by that
	// satellite. Optional.
	SatelliteID string `json:"satellite_id"`
	// CallTimeout bounds every API call. Zero leaves only the caller's context.
	CallTimeout time.Duration `json:"call_timeout"`
}

func init() {
	_ = authority.Register("groundstation", func(conf map[string]any) (authority.Authority, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(context.Background(), c)
	})
}

// New loads the AWS configuration and builds the adapter.
func New(ctx context.Context, cfg Config) (*Authority, error) {
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
	return NewWithClient(groundstation.NewFromConfig(awsCfg), cfg), nil
}

// classify maps an SDK error onto the authority sentinels. Client faults
// are rejections, except unknown resources which map to ErrNotFound when
// notFound is set. Other errors are returned unchanged.
func classify(err error, notFound bool) error {
	if err == nil {
		return nil
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		if notFound && ae.ErrorCode() == "ResourceNotFoundException" {
			return fmt.Errorf("%w: %s", authority.ErrNotFound, ae.ErrorMessage())
		}
		if ae.ErrorFault() == smithy.FaultClient {
			return fmt.Errorf("%w: %s: %s", authority.ErrRejected, ae.ErrorCode(), ae.ErrorMessage())
		}
	}
	return err
}

func (a *Authority) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.CallTimeout > 0 {
		return context.WithTimeout(ctx, a.cfg.CallTimeout)
	}
	return ctx, func() {}
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
