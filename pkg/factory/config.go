package factory

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"aws-client-factory/pkg/clock"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/oracle/oci-go-sdk/v65/common"
)

// ErrInvalidOptions wraps option values the SDK configuration rejects.
var ErrInvalidOptions = errors.New("factory: invalid options")

// Config is the resolved configuration a single client was built from.
type Config struct {
	// Options holds the merged options.
	Options Options
	// AWS is the SDK configuration handed to the service constructor. Zero for non-AWS services.
	AWS aws.Config
	// Clock is nil for clients that do not support clock correction.
	Clock *clock.Setting

	ociProvider common.ConfigurationProvider
}

// ClockSetting implements clock.Configured.
func (c *Config) ClockSetting() *clock.Setting {
	if c == nil {
		return nil
	}

	return c.Clock
}

func resolveAWSConfig(base aws.Config, opts Options) (*Config, error) {
	cfg := base.Copy()

	if region := strings.TrimSpace(opts.Region); region != "" {
		cfg.Region = region
	}

	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	if opts.AccessKeyID != "" || opts.SecretAccessKey != "" {
		cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			opts.SessionToken,
		))
	}

	if opts.MaxAttempts > 0 {
		cfg.RetryMaxAttempts = opts.MaxAttempts
	}

	if mode := strings.TrimSpace(opts.RetryMode); mode != "" {
		parsed, err := aws.ParseRetryMode(mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}

		cfg.RetryMode = parsed
	}

	if opts.HTTPTimeout > 0 {
		cfg.HTTPClient = awshttp.NewBuildableClient().WithTimeout(opts.HTTPTimeout)
	}

	if opts.AppID != "" {
		cfg.AppID = opts.AppID
	}

	setting := clock.NewSetting()

	apiOptions := slices.Clone(cfg.APIOptions)

	keys := make([]string, 0, len(opts.UserAgent))
	for key := range opts.UserAgent {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		apiOptions = append(apiOptions, awsmiddleware.AddUserAgentKeyValue(key, opts.UserAgent[key]))
	}

	cfg.APIOptions = append(apiOptions, setting.TrackSkew)

	return &Config{Options: opts, AWS: cfg, Clock: setting}, nil
}

func resolveOCIConfig(provider common.ConfigurationProvider, opts Options) *Config {
	return &Config{Options: opts, ociProvider: provider}
}
