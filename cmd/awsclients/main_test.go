package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aws-client-factory/internal/buildinfo"
	"aws-client-factory/pkg/cache"
	"aws-client-factory/pkg/factory"
	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
)

var errServeFailed = errors.New("listen failed")

func testRunDeps(cfg runtimeConfig) runDeps {
	return runDeps{
		newLogger: func(string) (*zap.Logger, error) { return zap.NewNop(), nil },
		newCache: func(ctx context.Context, settings factory.Settings) (*cache.Cache, error) {
			settings.Base = &aws.Config{Region: "us-east-1"}

			return cache.New(ctx, settings)
		},
		currentBuildInfo: func() buildinfo.Info {
			return buildinfo.Info{Version: "1.0.0", GitCommit: "abc123", BuildDate: "2024-05-01"}
		},
		loadConfig: func(string) (runtimeConfig, error) { return cfg, nil },
		serveHTTP: func(context.Context, string, http.Handler) error {
			return nil
		},
	}
}

func testConfig() runtimeConfig {
	cfg := defaultRuntimeConfig()
	cfg.Clients.Region = "eu-west-1"
	cfg.Clients.Endpoint = "http://localhost:4566"
	cfg.Clients.RetryMode = "standard"
	cfg.Clock.Sync = false
	cfg.OCI.Region = "us-ashburn-1"

	return cfg
}

func TestParseArgsDefaults(t *testing.T) {
	t.Parallel()

	opts, err := parseArgs([]string{"regions"})
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}

	if opts.configPath != "/etc/awsclients/config.yaml" {
		t.Fatalf("expected default config path, got %q", opts.configPath)
	}

	if opts.logLevel != "info" {
		t.Fatalf("expected default log level, got %q", opts.logLevel)
	}

	if opts.command != "regions" || len(opts.commandArgs) != 0 {
		t.Fatalf("unexpected command %q %v", opts.command, opts.commandArgs)
	}
}

func TestParseArgsSplitsCommandArguments(t *testing.T) {
	t.Parallel()

	args := []string{"--config", "./testdata/config.yaml", "--log-level", " debug ", " Describe ", "-service", "S3"}

	opts, err := parseArgs(args)
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}

	if opts.configPath != "./testdata/config.yaml" {
		t.Fatalf("unexpected config path: %q", opts.configPath)
	}

	if opts.logLevel != "debug" {
		t.Fatalf("unexpected log level: %q", opts.logLevel)
	}

	if opts.command != "describe" {
		t.Fatalf("expected trimmed lowercase command, got %q", opts.command)
	}

	if strings.Join(opts.commandArgs, " ") != "-service S3" {
		t.Fatalf("unexpected command args: %v", opts.commandArgs)
	}
}

func TestParseArgsRejectsMissingAndUnknownCommands(t *testing.T) {
	t.Parallel()

	_, err := parseArgs(nil)
	if !errors.Is(err, errMissingCommand) {
		t.Fatalf("expected missing command error, got %v", err)
	}

	_, err = parseArgs([]string{"deploy"})
	if !errors.Is(err, errUnsupportedCommand) {
		t.Fatalf("expected unsupported command error, got %v", err)
	}
}

func TestParseArgsReturnsFlagError(t *testing.T) {
	t.Parallel()

	_, err := parseArgs([]string{"--unknown-flag"})
	if err == nil {
		t.Fatal("expected flag parsing error")
	}

	if !errors.Is(err, flag.ErrHelp) && !strings.Contains(err.Error(), "flag provided but not defined") {
		t.Fatalf("unexpected error type: %v", err)
	}
}

func TestNewLoggerRejectsInvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := newLogger("not-a-level")
	if !errors.Is(err, errInvalidLogLevel) {
		t.Fatalf("expected invalid log level error, got %v", err)
	}
}

func TestNewLoggerAppliesLevel(t *testing.T) {
	t.Parallel()

	logger, err := newLogger("debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer func() {
		_ = logger.Sync()
	}()

	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected logger to enable debug level")
	}
}

func TestRunPrintsStaticTables(t *testing.T) {
	t.Parallel()

	type testCase struct {
		command  string
		contains string
	}

	cases := []testCase{
		{command: "regions", contains: "us-east-1\n"},
		{command: "principals", contains: "lambda\tlambda.amazonaws.com\n"},
		{command: "version", contains: "awsclients 1.0.0 (commit abc123, built 2024-05-01)"},
	}

	for _, tc := range cases {
		t.Run(tc.command, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer

			code := run(context.Background(), []string{tc.command}, testRunDeps(testConfig()), &stdout, &stderr)
			if code != exitCodeSuccess {
				t.Fatalf("expected success, got %d (%s)", code, stderr.String())
			}

			if !strings.Contains(stdout.String(), tc.contains) {
				t.Fatalf("expected %q in output:\n%s", tc.contains, stdout.String())
			}
		})
	}
}

func TestRunDescribeRendersResolvedConfig(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	args := []string{"describe", "-service", "s3", "-region", "eu-west-2"}

	code := run(context.Background(), args, testRunDeps(testConfig()), &stdout, &stderr)
	if code != exitCodeSuccess {
		t.Fatalf("expected success, got %d (%s)", code, stderr.String())
	}

	var desc description

	decodeErr := json.Unmarshal(stdout.Bytes(), &desc)
	if decodeErr != nil {
		t.Fatalf("failed to decode description: %v\n%s", decodeErr, stdout.String())
	}

	if desc.Service != "S3" {
		t.Fatalf("expected canonical service name, got %q", desc.Service)
	}

	if desc.Region != "eu-west-2" {
		t.Fatalf("expected per-call region to win, got %q", desc.Region)
	}

	if desc.Endpoint != "http://localhost:4566" || desc.RetryMode != "standard" {
		t.Fatalf("expected configured defaults, got %+v", desc)
	}

	if desc.ClockSynced {
		t.Fatal("expected unsynced client when clock sync is disabled")
	}

	if strings.Contains(stdout.String(), "oci") {
		t.Fatalf("expected no OCI settings on an AWS client:\n%s", stdout.String())
	}

	if desc.UserAgent["awsclients"] != "1.0.0" {
		t.Fatalf("expected build version in user agent, got %v", desc.UserAgent)
	}
}

func TestRunDescribeDocumentClientUsesDynamoDBConfig(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	cfg := testConfig()
	cfg.Clock.Sync = true

	code := run(context.Background(), []string{"describe", "-service", "DocumentClient"}, testRunDeps(cfg), &stdout, &stderr)
	if code != exitCodeSuccess {
		t.Fatalf("expected success, got %d (%s)", code, stderr.String())
	}

	var desc description

	decodeErr := json.Unmarshal(stdout.Bytes(), &desc)
	if decodeErr != nil {
		t.Fatalf("failed to decode description: %v", decodeErr)
	}

	if desc.Region != "eu-west-1" || !desc.ClockSynced {
		t.Fatalf("expected synced document client in eu-west-1, got %+v", desc)
	}
}

func TestRunDescribeRejectsBadArguments(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name string
		args []string
	}

	cases := []testCase{
		{name: "missing service", args: []string{"describe"}},
		{name: "unknown service", args: []string{"describe", "-service", "Lambda"}},
		{name: "unknown flag", args: []string{"describe", "-zone", "a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer

			code := run(context.Background(), tc.args, testRunDeps(testConfig()), &stdout, &stderr)
			if code != exitCodeParseError {
				t.Fatalf("expected parse error exit code, got %d", code)
			}

			if stderr.Len() == 0 {
				t.Fatal("expected error message on stderr")
			}
		})
	}
}

func TestRunServeExposesMetricsAndStatus(t *testing.T) {
	t.Parallel()

	var (
		servedAddr string
		served     http.Handler
	)

	deps := testRunDeps(testConfig())
	deps.serveHTTP = func(_ context.Context, addr string, handler http.Handler) error {
		servedAddr = addr
		served = handler

		return nil
	}

	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"serve", "-warm", "S3, ec2"}, deps, &stdout, &stderr)
	if code != exitCodeSuccess {
		t.Fatalf("expected success, got %d (%s)", code, stderr.String())
	}

	if servedAddr != ":9109" {
		t.Fatalf("expected configured bind address, got %q", servedAddr)
	}

	metrics := httptest.NewRecorder()
	served.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(metrics.Body.String(), "client_factory_constructed_total{service=\"EC2\"} 1") {
		t.Fatalf("expected warmed EC2 construction in metrics:\n%s", metrics.Body.String())
	}

	status := httptest.NewRecorder()
	served.ServeHTTP(status, httptest.NewRequest(http.MethodGet, "/status", nil))

	if status.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status.Code)
	}

	if !strings.Contains(status.Body.String(), "\"service\":\"S3\"") {
		t.Fatalf("expected S3 in status body: %s", status.Body.String())
	}
}

func TestRunServePropagatesServerError(t *testing.T) {
	t.Parallel()

	deps := testRunDeps(testConfig())
	deps.serveHTTP = func(context.Context, string, http.Handler) error {
		return errServeFailed
	}

	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"serve", "-addr", ":0"}, deps, &stdout, &stderr)
	if code != exitCodeRuntimeError {
		t.Fatalf("expected runtime error exit code, got %d", code)
	}

	if !strings.Contains(stderr.String(), errServeFailed.Error()) {
		t.Fatalf("expected server error on stderr, got %q", stderr.String())
	}
}

func TestServeHTTPStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := serveHTTP(ctx, "127.0.0.1:0", http.NotFoundHandler())
	if err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
