// Package main wires the awsclients CLI entrypoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"aws-client-factory/internal/buildinfo"
	"aws-client-factory/pkg/cache"
	"aws-client-factory/pkg/factory"
	"go.uber.org/zap"
)

const (
	defaultConfigPath = "/etc/awsclients/config.yaml"
	defaultLogLevel   = "info"

	commandRegions    = "regions"
	commandPrincipals = "principals"
	commandDescribe   = "describe"
	commandServe      = "serve"
	commandVersion    = "version"

	exitCodeSuccess      = 0
	exitCodeRuntimeError = 1
	exitCodeParseError   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], defaultRunDeps(), os.Stdout, os.Stderr)

	stop()

	if code != 0 {
		exitProcess(code)
	}
}

var exitProcess = os.Exit //nolint:gochecknoglobals // replaceable for tests

type runDeps struct {
	newLogger        func(level string) (*zap.Logger, error)
	newCache         func(ctx context.Context, settings factory.Settings) (*cache.Cache, error)
	currentBuildInfo func() buildinfo.Info
	loadConfig       func(path string) (runtimeConfig, error)
	serveHTTP        func(ctx context.Context, addr string, handler http.Handler) error
}

func defaultRunDeps() runDeps {
	return runDeps{
		newLogger:        newLogger,
		newCache:         cache.New,
		currentBuildInfo: buildinfo.Current,
		loadConfig:       loadConfig,
		serveHTTP:        serveHTTP,
	}
}

var (
	errInvalidLogLevel    = errors.New("invalid log level")
	errMissingCommand     = errors.New("missing command")
	errUnsupportedCommand = errors.New("unsupported command")
)

func run(ctx context.Context, args []string, deps runDeps, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		return writeError(stderr, err, exitCodeParseError)
	}

	switch opts.command {
	case commandRegions:
		return writeError(stderr, printRegions(stdout), exitCodeRuntimeError)
	case commandPrincipals:
		return writeError(stderr, printPrincipals(stdout), exitCodeRuntimeError)
	case commandVersion:
		return writeError(stderr, printVersion(stdout, deps.currentBuildInfo()), exitCodeRuntimeError)
	}

	cfg, err := deps.loadConfig(opts.configPath)
	if err != nil {
		return writeError(
			stderr,
			fmt.Errorf("failed to load configuration: %w", err),
			exitCodeRuntimeError,
		)
	}

	logger, err := deps.newLogger(opts.logLevel)
	if err != nil {
		return writeError(
			stderr,
			fmt.Errorf("failed to configure logger: %w", err),
			exitCodeRuntimeError,
		)
	}

	defer func() {
		_ = logger.Sync()
	}()

	info := deps.currentBuildInfo()
	logger.Debug(
		"starting awsclients",
		zap.String("version", info.Version),
		zap.String("commit", info.GitCommit),
		zap.String("configPath", opts.configPath),
		zap.String("command", opts.command),
	)

	cmd := command{ctx: ctx, cfg: cfg, deps: deps, logger: logger, stdout: stdout}

	switch opts.command {
	case commandDescribe:
		err = cmd.describe(opts.commandArgs)
	case commandServe:
		err = cmd.serve(opts.commandArgs)
	}

	if err != nil {
		var parseErr *commandParseError
		if errors.As(err, &parseErr) {
			return writeError(stderr, err, exitCodeParseError)
		}

		logger.Error("command failed", zap.String("command", opts.command), zap.Error(err))

		return writeError(stderr, err, exitCodeRuntimeError)
	}

	return exitCodeSuccess
}

func writeError(dst io.Writer, err error, code int) int {
	if err == nil {
		return exitCodeSuccess
	}

	_, ferr := fmt.Fprintf(dst, "%v\n", err)
	if ferr != nil {
		return code
	}

	return code
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = defaultLogLevel
	}

	cfg := zap.NewProductionConfig()

	err := cfg.Level.UnmarshalText([]byte(level))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.CallerKey = "caller"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return logger, nil
}

type options struct {
	configPath  string
	logLevel    string
	command     string
	commandArgs []string
}

func parseArgs(args []string) (options, error) {
	var opts options

	flagSet := flag.NewFlagSet("awsclients", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(
		&opts.configPath,
		"config",
		defaultConfigPath,
		"Path to the awsclients configuration file",
	)
	flagSet.StringVar(
		&opts.logLevel,
		"log-level",
		defaultLogLevel,
		"Structured log level (debug, info, warn, error)",
	)

	err := flagSet.Parse(args)
	if err != nil {
		return options{}, fmt.Errorf("parse CLI arguments: %w", err)
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return options{}, fmt.Errorf(
			"%w (supported: %s)",
			errMissingCommand,
			strings.Join(supportedCommands(), ", "),
		)
	}

	opts.command = strings.ToLower(strings.TrimSpace(rest[0]))
	opts.commandArgs = rest[1:]

	if !isValidCommand(opts.command) {
		return options{}, fmt.Errorf(
			"%w: %q (supported: %s)",
			errUnsupportedCommand,
			opts.command,
			strings.Join(supportedCommands(), ", "),
		)
	}

	opts.logLevel = strings.TrimSpace(opts.logLevel)
	if opts.logLevel == "" {
		opts.logLevel = defaultLogLevel
	}

	opts.configPath = strings.TrimSpace(opts.configPath)
	if opts.configPath == "" {
		opts.configPath = defaultConfigPath
	}

	return opts, nil
}

func supportedCommands() []string {
	return []string{commandRegions, commandPrincipals, commandDescribe, commandServe, commandVersion}
}

func isValidCommand(command string) bool {
	switch command {
	case commandRegions, commandPrincipals, commandDescribe, commandServe, commandVersion:
		return true
	default:
		return false
	}
}
