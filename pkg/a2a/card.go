// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/coordinator-proxy/pkg/auth"
)

const (
	cardPath    = "/.well-known/agent-card.json"
	maxCardBody = 1 << 20
)

// CardURL returns the agent card location below a runtime base URL.
func CardURL(base string) string {
	return strings.TrimRight(base, "/") + cardPath
}

// RuntimeURL returns the AgentCore invocation URL for an agent runtime ARN.
func RuntimeURL(region, agentARN string) string {
	return fmt.Sprintf("https://bedrock-agentcore.%s.amazonaws.com/runtimes/%s/invocations",
		region, strings.ReplaceAll(url.QueryEscape(agentARN), "+", "%20"))
}

// FetchCard retrieves and decodes the agent card at cardURL. When bearer is
// non-nil the request is authenticated with it.
func FetchCard(ctx context.Context, client *http.Client, cardURL string, bearer *auth.Bearer) (AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return AgentCard{}, fmt.Errorf("build agent card request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	if bearer != nil {
		if _, err := bearer.Attach(req); err != nil {
			return AgentCard{}, fmt.Errorf("authorize agent card request: %w", err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return AgentCard{}, fmt.Errorf("fetch agent card: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().
				Err(closeErr).
				Str("card_url", cardURL).
				Msg("close agent card response body failed")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCardBody))
	if err != nil {
		return AgentCard{}, fmt.Errorf("read agent card: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return AgentCard{}, fmt.Errorf("fetch agent card: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var card AgentCard
	if err := json.Unmarshal(body, &card); err != nil {
		return AgentCard{}, fmt.Errorf("decode agent card: %w", err)
	}
	return card, nil
}
