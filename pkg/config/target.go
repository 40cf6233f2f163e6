// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-core-stack/coordinator-proxy/pkg/auth"
)

const (
	EnvAgentURL    = "COORDINATOR_AGENT_URL"
	EnvBearerToken = "BEARER_TOKEN"
)

// LookupFunc resolves a single configuration key, reporting whether it was set.
type LookupFunc func(key string) (string, bool)

// Target identifies the coordinator agent a request is relayed to.
type Target struct {
	URL         *url.URL
	BearerToken string
}

// String renders the target without exposing the bearer token.
func (t Target) String() string {
	u := ""
	if t.URL != nil {
		u = t.URL.String()
	}
	return fmt.Sprintf("%s (token %s)", u, auth.Redact(t.BearerToken))
}

// TargetError reports a missing or unusable coordinator setting.
type TargetError struct {
	Var    string
	Reason string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s %s", e.Var, e.Reason)
}

// LoadTarget resolves the coordinator URL and bearer token. It is meant to be
// called per invocation so rotated values are picked up without a restart.
func LoadTarget(lookup LookupFunc) (Target, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	rawURL, _ := lookup(EnvAgentURL)
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Target{}, &TargetError{Var: EnvAgentURL, Reason: "is required"}
	}

	token, _ := lookup(EnvBearerToken)
	token = strings.TrimSpace(token)
	if token == "" {
		return Target{}, &TargetError{Var: EnvBearerToken, Reason: "is required"}
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Target{}, &TargetError{Var: EnvAgentURL, Reason: "must be an absolute URL (scheme://host)"}
	}

	return Target{URL: u, BearerToken: token}, nil
}
