// Package factory memoizes cloud SDK client construction.
//
// A Factory exposes one constructor per known service. Calls whose options canonicalize to the
// same key return the same instance; distinct keys build and cache independently. Options are
// merged per call > factory defaults > environment (AWS_REGION for AWS services).
package factory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"aws-client-factory/pkg/clock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/oracle/oci-go-sdk/v65/common"
	"go.uber.org/zap"
)

// EnvRegion names the environment variable supplying the default AWS region.
const EnvRegion = "AWS_REGION"

var (
	// ErrUnknownService is returned for service names outside the registered set.
	ErrUnknownService = errors.New("factory: unknown service")

	errUnexpectedInstance = errors.New("factory: unexpected instance type")
)

//nolint:gochecknoglobals // overridden in tests
var (
	lookupEnv         = os.LookupEnv
	loadDefaultConfig = config.LoadDefaultConfig
)

// Settings configures a Factory.
type Settings struct {
	// Defaults are merged beneath every call's options.
	Defaults Options
	// UseGlobalConfigClock binds every AWS client's clock offset to one shared Offset.
	UseGlobalConfigClock bool
	// Clock is the shared Offset used when UseGlobalConfigClock is set. Nil selects clock.Global.
	Clock *clock.Offset
	// Base replaces the SDK configuration otherwise loaded with config.LoadDefaultConfig.
	Base *aws.Config
	// OCIProvider replaces the OCI configuration provider chosen from the options.
	OCIProvider common.ConfigurationProvider
	Logger      *zap.Logger
	Observer    Observer
}

// Factory builds and memoizes SDK clients.
type Factory struct {
	defaults    Options
	envRegion   string
	base        aws.Config
	ociProvider common.ConfigurationProvider
	shared      *clock.Offset
	logger      *zap.Logger
	observer    Observer
	tables      map[string]*memoTable
}

// New builds a Factory. Unless settings.Base is provided the SDK's default configuration chain
// is loaded once here; per-client configurations are copies of it.
func New(ctx context.Context, settings Settings) (*Factory, error) {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	observer := settings.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	var base aws.Config

	if settings.Base != nil {
		base = settings.Base.Copy()
	} else {
		loaded, err := loadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load default aws config: %w", err)
		}

		base = loaded
	}

	var shared *clock.Offset

	if settings.UseGlobalConfigClock {
		shared = settings.Clock
		if shared == nil {
			shared = clock.Global
		}
	}

	tables := make(map[string]*memoTable, len(registry))
	for name := range registry {
		tables[name] = newMemoTable()
	}

	factory := &Factory{
		defaults:    settings.Defaults.clone(),
		envRegion:   envRegion(),
		base:        base,
		ociProvider: settings.OCIProvider,
		shared:      shared,
		logger:      logger,
		observer:    observer,
		tables:      tables,
	}

	logger.Debug(
		"client factory ready",
		zap.String("defaultRegion", factory.defaults.Region),
		zap.String("envRegion", factory.envRegion),
		zap.Bool("clockSync", shared != nil),
	)

	return factory, nil
}

func envRegion() string {
	value, ok := lookupEnv(EnvRegion)
	if !ok {
		return ""
	}

	return strings.TrimSpace(value)
}

// Defaults returns the factory-level defaults with the environment region filled in, as an
// AWS client with empty per-call options would see them.
func (f *Factory) Defaults() (Options, error) {
	merged, err := mergeOptions(f.defaults, Options{Region: f.envRegion})
	if err != nil {
		return Options{}, err
	}

	return merged, nil
}

// SharedClock returns the Offset clients are synced to, or nil when clock sync is disabled.
func (f *Factory) SharedClock() *clock.Offset {
	return f.shared
}

// Cached reports how many instances are memoized for service.
func (f *Factory) Cached(service string) int {
	table, ok := f.tables[service]
	if !ok {
		return 0
	}

	return table.size()
}

// Client builds or returns the memoized client for the named service.
//
//nolint:ireturn // callers select the concrete type through the typed accessors.
func (f *Factory) Client(service string, opts Options) (Instance, error) {
	desc, ok := registry[service]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}

	return f.get(desc, opts)
}

// Build is the typed form of Factory.Client.
func Build[T Instance](f *Factory, svc Service[T], opts Options) (T, error) {
	var zero T

	instance, err := f.get(svc, opts)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", errUnexpectedInstance, svc.Name, instance)
	}

	return typed, nil
}

//nolint:ireturn // Instance is the common client surface.
func (f *Factory) get(desc descriptor, opts Options) (Instance, error) {
	name := desc.serviceName()

	table, ok := f.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, name)
	}

	key, err := canonicalKey(opts)
	if err != nil {
		return nil, err
	}

	instance, reused, err := table.getOrBuild(key, func() (Instance, error) {
		return f.construct(desc, opts)
	})
	if err != nil {
		f.observer.ObserveFailure(name)
		f.logger.Debug("client construction failed", zap.String("service", name), zap.Error(err))

		return nil, err
	}

	if reused {
		f.observer.ObserveReuse(name)
	}

	return instance, nil
}

//nolint:ireturn // Instance is the common client surface.
func (f *Factory) construct(desc descriptor, opts Options) (Instance, error) {
	name := desc.serviceName()

	cfg, err := f.resolve(desc.provider(), opts)
	if err != nil {
		return nil, fmt.Errorf("resolve %s config: %w", name, err)
	}

	instance, err := desc.instantiate(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct %s client: %w", name, err)
	}

	synced := false
	if f.shared != nil {
		synced = clock.Sync(instance, f.shared)
	}

	f.observer.ObserveConstruct(name)
	f.logger.Debug(
		"constructed client",
		zap.String("service", name),
		zap.String("region", cfg.Options.Region),
		zap.Bool("clockSynced", synced),
	)

	return instance, nil
}

// resolve merges the layers that apply to provider. AWS clients see per-call options, then the
// defaults, then AWS_REGION. OCI clients see per-call OCIRegion, then the per-call region and
// endpoint, then the OCI defaults; AWS defaults never reach them.
func (f *Factory) resolve(provider Provider, opts Options) (*Config, error) {
	if provider == ProviderOCI {
		call := opts.forOCI()
		call.Region = opts.Region
		call.Endpoint = opts.Endpoint

		merged, err := mergeOptions(Options{Region: opts.OCIRegion}, call, f.defaults.forOCI())
		if err != nil {
			return nil, err
		}

		return resolveOCIConfig(f.ociProvider, merged), nil
	}

	merged, err := mergeOptions(opts, f.defaults, Options{Region: f.envRegion})
	if err != nil {
		return nil, err
	}

	return resolveAWSConfig(f.base, merged.forAWS())
}
