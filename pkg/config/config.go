// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envConfigFile             = "COORDINATOR_CONFIG_FILE"
	envListenAddr             = "COORDINATOR_LISTEN_ADDR"
	envMetricsAddr            = "COORDINATOR_METRICS_ADDR"
	envProtocol               = "COORDINATOR_PROTOCOL"
	envSessionHeader          = "COORDINATOR_SESSION_HEADER"
	envRequestTimeout         = "COORDINATOR_REQUEST_TIMEOUT"
	envInsecureSkipVerify     = "COORDINATOR_UPSTREAM_INSECURE"
	envLogLevel               = "COORDINATOR_LOG_LEVEL"
	envServerReadTimeout      = "COORDINATOR_SERVER_READ_TIMEOUT"
	envServerWriteTimeout     = "COORDINATOR_SERVER_WRITE_TIMEOUT"
	envServerIdleTimeout      = "COORDINATOR_SERVER_IDLE_TIMEOUT"
	envGracefulShutdown       = "COORDINATOR_GRACEFUL_SHUTDOWN"
	defaultListenAddr         = "127.0.0.1:8080"
	defaultRequestTimeout     = 300 * time.Second
	defaultSessionHeader      = "X-Amzn-Bedrock-AgentCore-Runtime-Session-Id"
	defaultLogLevel           = "info"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerIdleTimeout  = 120 * time.Second
	defaultGracefulShutdown   = 10 * time.Second
	writeTimeoutSlack         = 30 * time.Second
	defaultServerWriteTimeout = defaultRequestTimeout + writeTimeoutSlack
)

// Protocol selects how the inbound message is framed for the coordinator.
type Protocol string

const (
	// ProtocolJSON posts {"message": ...} and relays the body verbatim.
	ProtocolJSON Protocol = "json"
	// ProtocolA2A wraps the message in a JSON-RPC message/send envelope.
	ProtocolA2A Protocol = "a2a"
)

// Config captures runtime settings for the coordinator proxy. The agent URL
// and bearer token are resolved per invocation by LoadTarget.
type Config struct {
	ListenAddr              string
	MetricsAddr             string
	Protocol                Protocol
	SessionHeader           string
	RequestTimeout          time.Duration
	InsecureSkipVerify      bool
	LogLevel                string
	ServerReadTimeout       time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	GracefulShutdownTimeout time.Duration
}

// fileConfig mirrors Config for the optional YAML overlay.
type fileConfig struct {
	ListenAddr         string `yaml:"listen_addr"`
	MetricsAddr        string `yaml:"metrics_addr"`
	Protocol           string `yaml:"protocol"`
	SessionHeader      string `yaml:"session_header"`
	RequestTimeout     string `yaml:"request_timeout"`
	InsecureSkipVerify *bool  `yaml:"upstream_insecure"`
	LogLevel           string `yaml:"log_level"`
	Server             struct {
		ReadTimeout      string `yaml:"read_timeout"`
		WriteTimeout     string `yaml:"write_timeout"`
		IdleTimeout      string `yaml:"idle_timeout"`
		GracefulShutdown string `yaml:"graceful_shutdown"`
	} `yaml:"server"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ListenAddr:              defaultListenAddr,
		Protocol:                ProtocolJSON,
		SessionHeader:           defaultSessionHeader,
		RequestTimeout:          defaultRequestTimeout,
		LogLevel:                defaultLogLevel,
		ServerReadTimeout:       defaultServerReadTimeout,
		ServerWriteTimeout:      defaultServerWriteTimeout,
		ServerIdleTimeout:       defaultServerIdleTimeout,
		GracefulShutdownTimeout: defaultGracefulShutdown,
	}
}

// Load reads configuration from environment variables, layered over the YAML
// file named by COORDINATOR_CONFIG_FILE when it is set.
func Load() (Config, error) {
	return LoadFrom(strings.TrimSpace(os.Getenv(envConfigFile)))
}

// LoadFrom is Load with an explicit YAML path. An empty path skips the file.
// Environment variables always take precedence over file values.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	// Zero until set explicitly; derived from the request bound below.
	cfg.ServerWriteTimeout = 0

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.ListenAddr = getString(envListenAddr, cfg.ListenAddr)
	cfg.MetricsAddr = getString(envMetricsAddr, cfg.MetricsAddr)
	cfg.Protocol = Protocol(strings.ToLower(getString(envProtocol, string(cfg.Protocol))))
	cfg.SessionHeader = getString(envSessionHeader, cfg.SessionHeader)
	cfg.RequestTimeout = getDuration(envRequestTimeout, cfg.RequestTimeout)
	cfg.InsecureSkipVerify = getBool(envInsecureSkipVerify, cfg.InsecureSkipVerify)
	cfg.LogLevel = strings.ToLower(getString(envLogLevel, cfg.LogLevel))
	cfg.ServerReadTimeout = getDuration(envServerReadTimeout, cfg.ServerReadTimeout)
	cfg.ServerWriteTimeout = getDuration(envServerWriteTimeout, cfg.ServerWriteTimeout)
	cfg.ServerIdleTimeout = getDuration(envServerIdleTimeout, cfg.ServerIdleTimeout)
	cfg.GracefulShutdownTimeout = getDuration(envGracefulShutdown, cfg.GracefulShutdownTimeout)

	if cfg.ServerWriteTimeout == 0 {
		cfg.ServerWriteTimeout = cfg.RequestTimeout + writeTimeoutSlack
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot produce a working proxy.
func (c Config) Validate() error {
	switch c.Protocol {
	case ProtocolJSON, ProtocolA2A:
	default:
		return fmt.Errorf("unsupported %s %q (want %q or %q)", envProtocol, c.Protocol, ProtocolJSON, ProtocolA2A)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.ServerWriteTimeout <= c.RequestTimeout {
		return fmt.Errorf("server write timeout %s must exceed request timeout %s", c.ServerWriteTimeout, c.RequestTimeout)
	}
	if strings.TrimSpace(c.SessionHeader) == "" {
		return errors.New("session header must not be empty")
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
	if fc.Protocol != "" {
		cfg.Protocol = Protocol(strings.ToLower(fc.Protocol))
	}
	if fc.SessionHeader != "" {
		cfg.SessionHeader = fc.SessionHeader
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.InsecureSkipVerify != nil {
		cfg.InsecureSkipVerify = *fc.InsecureSkipVerify
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"request_timeout", fc.RequestTimeout, &cfg.RequestTimeout},
		{"server.read_timeout", fc.Server.ReadTimeout, &cfg.ServerReadTimeout},
		{"server.write_timeout", fc.Server.WriteTimeout, &cfg.ServerWriteTimeout},
		{"server.idle_timeout", fc.Server.IdleTimeout, &cfg.ServerIdleTimeout},
		{"server.graceful_shutdown", fc.Server.GracefulShutdown, &cfg.GracefulShutdownTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse config %s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	return nil
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
