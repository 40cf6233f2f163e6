// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// agentcard fetches the A2A agent card published by a coordinator runtime,
// either from an explicit base URL or from an AgentCore runtime ARN.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/go-core-stack/coordinator-proxy/pkg/a2a"
	"github.com/go-core-stack/coordinator-proxy/pkg/auth"
	"github.com/go-core-stack/coordinator-proxy/pkg/config"
)

type options struct {
	agentARN string
	region   string
	baseURL  string
	token    string
	output   string
	timeout  time.Duration
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("agent card fetch failed")
	}
}

func run(args []string, out io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet("agentcard", pflag.ContinueOnError)
	flags.StringVar(&opts.agentARN, "agent-arn", "", "AgentCore runtime ARN")
	flags.StringVar(&opts.region, "region", "us-east-1", "AWS region of the runtime")
	flags.StringVar(&opts.baseURL, "url", os.Getenv(config.EnvAgentURL), "runtime base URL (used when --agent-arn is empty)")
	flags.StringVar(&opts.token, "token", os.Getenv(config.EnvBearerToken), "bearer token")
	flags.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cardURL, err := resolveCardURL(opts)
	if err != nil {
		return err
	}
	if opts.token == "" {
		return errors.New("bearer token is empty; pass --token or set " + config.EnvBearerToken)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	bearer := auth.NewBearer(opts.token, auth.DefaultSessionHeader)
	log.Debug().Str("card_url", cardURL).Str("token", auth.Redact(opts.token)).Msg("fetching agent card")

	card, err := a2a.FetchCard(ctx, &http.Client{Timeout: opts.timeout}, cardURL, bearer)
	if err != nil {
		return err
	}
	return render(out, opts.output, card)
}

func resolveCardURL(opts options) (string, error) {
	switch {
	case opts.agentARN != "":
		return a2a.CardURL(a2a.RuntimeURL(opts.region, opts.agentARN)), nil
	case opts.baseURL != "":
		return a2a.CardURL(opts.baseURL), nil
	default:
		return "", errors.New("either --agent-arn or --url is required")
	}
}

func render(out io.Writer, format string, card a2a.AgentCard) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(card)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(card); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
