package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"

	"aws-client-factory/internal/buildinfo"
	"aws-client-factory/pkg/awsconst"
	"aws-client-factory/pkg/cache"
	"aws-client-factory/pkg/factory"
	metricshttp "aws-client-factory/pkg/http/metrics"
	statushttp "aws-client-factory/pkg/http/status"
	"go.uber.org/zap"
)

var errServiceRequired = errors.New("describe: -service is required")

// commandParseError marks subcommand flag errors so run can report them with the parse exit code.
type commandParseError struct {
	err error
}

func (e *commandParseError) Error() string { return e.err.Error() }

func (e *commandParseError) Unwrap() error { return e.err }

type command struct {
	ctx    context.Context //nolint:containedctx // scoped to a single CLI invocation
	cfg    runtimeConfig
	deps   runDeps
	logger *zap.Logger
	stdout io.Writer
}

func printRegions(dst io.Writer) error {
	for _, region := range awsconst.Regions {
		_, err := fmt.Fprintln(dst, region)
		if err != nil {
			return fmt.Errorf("write regions: %w", err)
		}
	}

	return nil
}

func printPrincipals(dst io.Writer) error {
	names := make([]string, 0, len(awsconst.ServicePrincipals))
	for name := range awsconst.ServicePrincipals {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		_, err := fmt.Fprintf(dst, "%s\t%s\n", name, awsconst.ServicePrincipals[name])
		if err != nil {
			return fmt.Errorf("write principals: %w", err)
		}
	}

	return nil
}

func printVersion(dst io.Writer, info buildinfo.Info) error {
	_, err := fmt.Fprintf(dst, "awsclients %s (commit %s, built %s)\n", info.Version, info.GitCommit, info.BuildDate)
	if err != nil {
		return fmt.Errorf("write version: %w", err)
	}

	return nil
}

func (c command) settings(observer factory.Observer) factory.Settings {
	defaults := c.cfg.defaults()
	defaults.UserAgent = maps.Clone(defaults.UserAgent)

	key, value := c.deps.currentBuildInfo().UserAgent()
	if _, ok := defaults.UserAgent[key]; !ok {
		if defaults.UserAgent == nil {
			defaults.UserAgent = make(map[string]string, 1)
		}

		defaults.UserAgent[key] = value
	}

	return factory.Settings{
		Defaults:             defaults,
		UseGlobalConfigClock: c.cfg.Clock.Sync,
		Logger:               c.logger,
		Observer:             observer,
	}
}

// description is the JSON rendering of a resolved client configuration. Credentials are never
// included.
type description struct {
	Service     string            `json:"service"`
	Region      string            `json:"region,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"`
	MaxAttempts int               `json:"maxAttempts,omitempty"`
	RetryMode   string            `json:"retryMode,omitempty"`
	HTTPTimeout string            `json:"httpTimeout,omitempty"`
	AppID       string            `json:"appId,omitempty"`
	UserAgent   map[string]string `json:"userAgent,omitempty"`
	OCIRegion   string            `json:"ociRegion,omitempty"`
	OCIProfile  string            `json:"ociProfile,omitempty"`
	OCIAuth     string            `json:"ociAuth,omitempty"`
	ClockOffset string            `json:"clockOffset,omitempty"`
	ClockSynced bool              `json:"clockSynced"`
}

func (c command) describe(args []string) error {
	var (
		service  string
		override factory.Options
	)

	flagSet := flag.NewFlagSet(commandDescribe, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&service, "service", "", "Service name (see factory services)")
	flagSet.StringVar(&override.Region, "region", "", "Region override")
	flagSet.StringVar(&override.Endpoint, "endpoint", "", "Endpoint override")

	err := flagSet.Parse(args)
	if err != nil {
		return &commandParseError{err: fmt.Errorf("parse describe arguments: %w", err)}
	}

	name, err := canonicalService(service)
	if err != nil {
		return &commandParseError{err: err}
	}

	clients, err := c.deps.newCache(c.ctx, c.settings(nil))
	if err != nil {
		return fmt.Errorf("build client cache: %w", err)
	}

	instance, err := clients.Factory().Client(name, override)
	if err != nil {
		return fmt.Errorf("describe %s: %w", name, err)
	}

	desc := describeInstance(name, instance, clients.Factory())

	payload, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal description: %w", err)
	}

	_, err = fmt.Fprintf(c.stdout, "%s\n", payload)
	if err != nil {
		return fmt.Errorf("write description: %w", err)
	}

	return nil
}

func describeInstance(name string, instance factory.Instance, clients *factory.Factory) description {
	desc := description{Service: name}

	cfg := factory.ConfigOf(instance)
	if cfg == nil {
		return desc
	}

	opts := cfg.Options
	desc.Region = opts.Region
	desc.Endpoint = opts.Endpoint
	desc.MaxAttempts = opts.MaxAttempts
	desc.RetryMode = opts.RetryMode
	desc.AppID = opts.AppID
	desc.UserAgent = opts.UserAgent
	desc.OCIRegion = opts.OCIRegion
	desc.OCIProfile = opts.OCIProfile
	desc.OCIAuth = opts.OCIAuth

	if opts.HTTPTimeout > 0 {
		desc.HTTPTimeout = opts.HTTPTimeout.String()
	}

	if setting := cfg.ClockSetting(); setting != nil {
		desc.ClockOffset = setting.Offset().String()
		desc.ClockSynced = clients.SharedClock() != nil && setting.BoundTo(clients.SharedClock())
	}

	return desc
}

func canonicalService(service string) (string, error) {
	trimmed := strings.TrimSpace(service)
	if trimmed == "" {
		return "", errServiceRequired
	}

	for _, name := range factory.Services() {
		if strings.EqualFold(name, trimmed) {
			return name, nil
		}
	}

	return "", fmt.Errorf(
		"%w: %q (supported: %s)",
		factory.ErrUnknownService,
		trimmed,
		strings.Join(factory.Services(), ", "),
	)
}

func (c command) serve(args []string) error {
	var (
		addr string
		warm string
	)

	flagSet := flag.NewFlagSet(commandServe, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&addr, "addr", c.cfg.HTTP.Bind, "Listen address for /metrics and /status")
	flagSet.StringVar(&warm, "warm", "", "Comma separated services to build at startup")

	err := flagSet.Parse(args)
	if err != nil {
		return &commandParseError{err: fmt.Errorf("parse serve arguments: %w", err)}
	}

	var services []string

	for _, entry := range strings.Split(warm, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		name, nameErr := canonicalService(entry)
		if nameErr != nil {
			return &commandParseError{err: nameErr}
		}

		services = append(services, name)
	}

	exporter := metricshttp.NewExporter()

	clients, err := c.deps.newCache(c.ctx, c.settings(exporter))
	if err != nil {
		return fmt.Errorf("build client cache: %w", err)
	}

	shared := clients.Factory().SharedClock()
	exporter.SetClock(shared)

	for _, name := range services {
		_, err = clients.GetOrBuild(name)
		if err != nil {
			return fmt.Errorf("warm %s: %w", name, err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter)
	mux.Handle("/status", statushttp.NewHandler(clients, shared))

	c.logger.Info(
		"serving client factory endpoints",
		zap.String("addr", addr),
		zap.Strings("warm", services),
		zap.Bool("clockSync", shared != nil),
	)

	return c.deps.serveHTTP(c.ctx, addr, mux)
}

var _ statushttp.Source = (*cache.Cache)(nil)
