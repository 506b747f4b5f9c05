package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"aws-client-factory/pkg/factory"
	"aws-client-factory/pkg/oci"
	"gopkg.in/yaml.v3"
)

const (
	envRegion      = "AWSCLIENTS_REGION"
	envEndpoint    = "AWSCLIENTS_ENDPOINT"
	envMaxAttempts = "AWSCLIENTS_MAX_ATTEMPTS"
	envRetryMode   = "AWSCLIENTS_RETRY_MODE"
	envHTTPTimeout = "AWSCLIENTS_HTTP_TIMEOUT"
	envAppID       = "AWSCLIENTS_APP_ID"
	envClockSync   = "AWSCLIENTS_CLOCK_SYNC"
	envHTTPBind    = "AWSCLIENTS_HTTP_ADDR"
	envOCIRegion   = "AWSCLIENTS_OCI_REGION"
	envOCIProfile  = "AWSCLIENTS_OCI_PROFILE"
	envOCIAuth     = "AWSCLIENTS_OCI_AUTH"

	defaultHTTPBind = ":9109"
)

type runtimeConfig struct {
	Clients clientsConfig
	Clock   clockConfig
	HTTP    httpConfig
	OCI     ociConfig
}

type clientsConfig struct {
	Region      string
	Endpoint    string
	MaxAttempts int
	RetryMode   string
	HTTPTimeout time.Duration
	AppID       string
	UserAgent   map[string]string
}

type clockConfig struct {
	Sync bool
}

type httpConfig struct {
	Bind string
}

type ociConfig struct {
	Region  string
	Profile string
	Auth    string
}

type fileConfig struct {
	Clients clientsFileConfig `yaml:"clients"`
	Clock   clockFileConfig   `yaml:"clock"`
	HTTP    httpFileConfig    `yaml:"http"`
	OCI     ociFileConfig     `yaml:"oci"`
}

type clientsFileConfig struct {
	Region      *string           `yaml:"region"`
	Endpoint    *string           `yaml:"endpoint"`
	MaxAttempts *int              `yaml:"maxAttempts"`
	RetryMode   *string           `yaml:"retryMode"`
	HTTPTimeout *time.Duration    `yaml:"httpTimeout"`
	AppID       *string           `yaml:"appId"`
	UserAgent   map[string]string `yaml:"userAgent"`
}

type clockFileConfig struct {
	Sync *bool `yaml:"sync"`
}

type httpFileConfig struct {
	Bind *string `yaml:"bind"`
}

type ociFileConfig struct {
	Region  *string `yaml:"region"`
	Profile *string `yaml:"profile"`
	Auth    *string `yaml:"auth"`
}

func defaultRuntimeConfig() runtimeConfig {
	var cfg runtimeConfig

	cfg.Clock.Sync = true
	cfg.HTTP.Bind = defaultHTTPBind
	cfg.OCI.Auth = oci.AuthConfigFile

	return cfg
}

func loadConfig(path string) (runtimeConfig, error) {
	cfg := defaultRuntimeConfig()

	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		applyEnvOverrides(&cfg)

		return cfg, nil
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return runtimeConfig{}, fmt.Errorf("read config file %q: %w", trimmed, err)
		}
	} else {
		var fileCfg fileConfig

		err := yaml.Unmarshal(data, &fileCfg)
		if err != nil {
			return runtimeConfig{}, fmt.Errorf("decode config file %q: %w", trimmed, err)
		}

		mergeClientsConfig(&cfg.Clients, fileCfg.Clients)
		assignBool(&cfg.Clock.Sync, fileCfg.Clock.Sync)
		assignString(&cfg.HTTP.Bind, fileCfg.HTTP.Bind)
		assignString(&cfg.OCI.Region, fileCfg.OCI.Region)
		assignString(&cfg.OCI.Profile, fileCfg.OCI.Profile)
		assignString(&cfg.OCI.Auth, fileCfg.OCI.Auth)
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func mergeClientsConfig(dst *clientsConfig, src clientsFileConfig) {
	assignString(&dst.Region, src.Region)
	assignString(&dst.Endpoint, src.Endpoint)
	assignInt(&dst.MaxAttempts, src.MaxAttempts)
	assignString(&dst.RetryMode, src.RetryMode)
	assignDuration(&dst.HTTPTimeout, src.HTTPTimeout)
	assignString(&dst.AppID, src.AppID)

	if len(src.UserAgent) > 0 {
		dst.UserAgent = make(map[string]string, len(src.UserAgent))
		for key, value := range src.UserAgent {
			dst.UserAgent[key] = value
		}
	}
}

func applyEnvOverrides(cfg *runtimeConfig) {
	cfg.Clients.Region = envString(envRegion, cfg.Clients.Region)
	cfg.Clients.Endpoint = envString(envEndpoint, cfg.Clients.Endpoint)
	cfg.Clients.MaxAttempts = envInt(envMaxAttempts, cfg.Clients.MaxAttempts)
	cfg.Clients.RetryMode = envString(envRetryMode, cfg.Clients.RetryMode)
	cfg.Clients.HTTPTimeout = envDuration(envHTTPTimeout, cfg.Clients.HTTPTimeout)
	cfg.Clients.AppID = envString(envAppID, cfg.Clients.AppID)
	cfg.Clock.Sync = envBool(envClockSync, cfg.Clock.Sync)
	cfg.HTTP.Bind = envString(envHTTPBind, cfg.HTTP.Bind)
	cfg.OCI.Region = envString(envOCIRegion, cfg.OCI.Region)
	cfg.OCI.Profile = envString(envOCIProfile, cfg.OCI.Profile)
	cfg.OCI.Auth = envString(envOCIAuth, cfg.OCI.Auth)

	if cfg.Clients.MaxAttempts < 0 {
		cfg.Clients.MaxAttempts = 0
	}

	if cfg.HTTP.Bind == "" {
		cfg.HTTP.Bind = defaultHTTPBind
	}
}

// defaults converts the client section into factory defaults.
func (c runtimeConfig) defaults() factory.Options {
	return factory.Options{
		Region:      c.Clients.Region,
		Endpoint:    c.Clients.Endpoint,
		MaxAttempts: c.Clients.MaxAttempts,
		RetryMode:   c.Clients.RetryMode,
		HTTPTimeout: c.Clients.HTTPTimeout,
		AppID:       c.Clients.AppID,
		OCIRegion:   c.OCI.Region,
		OCIProfile:  c.OCI.Profile,
		OCIAuth:     c.OCI.Auth,
		UserAgent:   c.Clients.UserAgent,
	}
}

var lookupEnv = os.LookupEnv //nolint:gochecknoglobals // overridden in tests

func assignBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}

func assignDuration(target *time.Duration, value *time.Duration) {
	if value != nil {
		*target = *value
	}
}

func assignInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func assignString(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func envBool(key string, fallback bool) bool {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}

	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	duration, err := time.ParseDuration(trimmed)
	if err != nil {
		return fallback
	}

	return duration
}

func envInt(key string, fallback int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func envString(key, fallback string) string {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	return trimmed
}
