// Package oci builds Oracle Cloud Infrastructure SDK clients for the client factory.
package oci

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/common/auth"
	"github.com/oracle/oci-go-sdk/v65/monitoring"
)

// Supported authentication modes.
const (
	AuthConfigFile        = "config_file"
	AuthInstancePrincipal = "instance_principal"
)

// ErrUnsupportedAuth indicates an authentication mode this package cannot build a provider for.
var ErrUnsupportedAuth = errors.New("oci: unsupported auth mode")

//nolint:gochecknoglobals // test seams rely on substituting the providers.
var (
	instancePrincipalProvider = func() (common.ConfigurationProvider, error) {
		return auth.InstancePrincipalConfigurationProvider()
	}
	defaultConfigProvider = common.DefaultConfigProvider
)

// Options addresses and authenticates a single OCI client.
type Options struct {
	Region   string
	Endpoint string
	Profile  string
	Auth     string
}

// ConfigurationProvider selects the SDK configuration provider for the auth mode. The config
// file mode reads the named profile, or DEFAULT when profile is empty.
//
//nolint:ireturn // the SDK models providers as an interface.
func ConfigurationProvider(authMode, profile string) (common.ConfigurationProvider, error) {
	mode := strings.ToLower(strings.TrimSpace(authMode))
	profile = strings.TrimSpace(profile)

	switch mode {
	case "", AuthConfigFile:
		if profile == "" {
			return defaultConfigProvider(), nil
		}

		return common.CustomProfileConfigProvider("", profile), nil
	case AuthInstancePrincipal:
		provider, err := instancePrincipalProvider()
		if err != nil {
			return nil, fmt.Errorf("build instance principal provider: %w", err)
		}

		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAuth, authMode)
	}
}

// NewMonitoringClient constructs a Monitoring client. When base is nil the provider is chosen
// from opts.Auth and opts.Profile. Region and Endpoint override what the provider reports.
func NewMonitoringClient(
	base common.ConfigurationProvider,
	opts Options,
) (*monitoring.MonitoringClient, error) {
	provider := base
	if provider == nil {
		selected, err := ConfigurationProvider(opts.Auth, opts.Profile)
		if err != nil {
			return nil, err
		}

		provider = selected
	}

	client, err := monitoring.NewMonitoringClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("create monitoring client: %w", err)
	}

	if region := strings.TrimSpace(opts.Region); region != "" {
		client.SetRegion(region)
	}

	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		client.Host = endpoint
	}

	return &client, nil
}
