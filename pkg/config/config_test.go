// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(envConfigFile, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout != 300*time.Second {
		t.Fatalf("expected 300s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.Protocol != ProtocolJSON {
		t.Fatalf("expected json protocol, got %q", cfg.Protocol)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.ServerWriteTimeout != 330*time.Second {
		t.Fatalf("expected 330s write timeout, got %s", cfg.ServerWriteTimeout)
	}
	if cfg.ServerWriteTimeout <= cfg.RequestTimeout {
		t.Fatalf("write timeout %s must outlast request timeout %s", cfg.ServerWriteTimeout, cfg.RequestTimeout)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coordinator.yaml")
	contents := `
listen_addr: 0.0.0.0:9000
protocol: A2A
request_timeout: 45s
log_level: DEBUG
server:
  graceful_shutdown: 3s
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(envListenAddr, "127.0.0.1:7000")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7000" {
		t.Fatalf("env should win over file, got %q", cfg.ListenAddr)
	}
	if cfg.Protocol != ProtocolA2A {
		t.Fatalf("expected a2a protocol, got %q", cfg.Protocol)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Fatalf("expected 45s, got %s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected lower-cased log level, got %q", cfg.LogLevel)
	}
	if cfg.GracefulShutdownTimeout != 3*time.Second {
		t.Fatalf("expected 3s shutdown, got %s", cfg.GracefulShutdownTimeout)
	}
	if cfg.ServerWriteTimeout != 75*time.Second {
		t.Fatalf("expected write timeout derived from file request timeout, got %s", cfg.ServerWriteTimeout)
	}
}

func TestLoadDerivesWriteTimeoutFromRequestTimeout(t *testing.T) {
	t.Setenv(envRequestTimeout, "600s")

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.ServerWriteTimeout != 630*time.Second {
		t.Fatalf("expected write timeout to follow request timeout, got %s", cfg.ServerWriteTimeout)
	}
}

func TestLoadKeepsExplicitWriteTimeout(t *testing.T) {
	t.Setenv(envRequestTimeout, "600s")
	t.Setenv(envServerWriteTimeout, "15m")

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.ServerWriteTimeout != 15*time.Minute {
		t.Fatalf("expected explicit write timeout, got %s", cfg.ServerWriteTimeout)
	}
}

func TestLoadRejectsWriteTimeoutBelowRequestTimeout(t *testing.T) {
	t.Setenv(envRequestTimeout, "600s")
	t.Setenv(envServerWriteTimeout, "330s")

	if _, err := LoadFrom(""); err == nil || !strings.Contains(err.Error(), "write timeout") {
		t.Fatalf("expected write timeout validation error, got %v", err)
	}
}

func TestLoadRejectsBadFileDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("request_timeout: soon\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "request_timeout") {
		t.Fatalf("expected request_timeout parse error, got %v", err)
	}
}

func TestLoadRejectsUnknownProtocol(t *testing.T) {
	t.Setenv(envProtocol, "grpc")
	if _, err := LoadFrom(""); err == nil {
		t.Fatal("expected unsupported protocol error")
	}
}

func TestLoadTarget(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantVar string
	}{
		{
			name:    "missing url",
			env:     map[string]string{EnvBearerToken: "tok"},
			wantVar: EnvAgentURL,
		},
		{
			name:    "missing token",
			env:     map[string]string{EnvAgentURL: "https://agent.example.com/invocations"},
			wantVar: EnvBearerToken,
		},
		{
			name:    "blank token",
			env:     map[string]string{EnvAgentURL: "https://agent.example.com", EnvBearerToken: "   "},
			wantVar: EnvBearerToken,
		},
		{
			name:    "relative url",
			env:     map[string]string{EnvAgentURL: "/invocations", EnvBearerToken: "tok"},
			wantVar: EnvAgentURL,
		},
		{
			name: "complete",
			env:  map[string]string{EnvAgentURL: "https://agent.example.com/invocations", EnvBearerToken: "tok"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lookup := func(key string) (string, bool) {
				v, ok := tc.env[key]
				return v, ok
			}
			target, err := LoadTarget(lookup)
			if tc.wantVar == "" {
				if err != nil {
					t.Fatalf("LoadTarget: %v", err)
				}
				if target.URL.Host != "agent.example.com" || target.BearerToken != "tok" {
					t.Fatalf("unexpected target %+v", target)
				}
				return
			}
			var targetErr *TargetError
			if !errors.As(err, &targetErr) {
				t.Fatalf("expected *TargetError, got %v", err)
			}
			if targetErr.Var != tc.wantVar {
				t.Fatalf("expected %s, got %s", tc.wantVar, targetErr.Var)
			}
		})
	}
}

func TestTargetStringRedactsToken(t *testing.T) {
	target, err := LoadTarget(func(key string) (string, bool) {
		switch key {
		case EnvAgentURL:
			return "https://agent.example.com", true
		case EnvBearerToken:
			return "super-secret-token-value", true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("LoadTarget: %v", err)
	}
	if s := target.String(); strings.Contains(s, "super-secret-token-value") {
		t.Fatalf("token leaked in %q", s)
	}
}
