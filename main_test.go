// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package main

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevelIgnoresCase(t *testing.T) {
	cases := map[string]zerolog.Level{
		"INFO":   zerolog.InfoLevel,
		"Debug":  zerolog.DebugLevel,
		" warn ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		if err != nil {
			t.Fatalf("parseLogLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := parseLogLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
