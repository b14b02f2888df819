// Package health implements the doctor checks: is the objective store
// loadable, and is the Anthropic API reachable with the configured key.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeanpaul/goalkeeper/internal/config"
	"github.com/jeanpaul/goalkeeper/internal/store"
)

type Status struct {
	Component string
	OK        bool
	Detail    string
	Error     string
	Latency   time.Duration
}

// Check runs all checks and returns one Status per component.
func Check(ctx context.Context, cfg *config.Config) []Status {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return []Status{
		checkStore(cfg.Store.Path),
		checkAnthropic(ctx, cfg),
	}
}

func checkStore(path string) Status {
	s := Status{Component: "store"}
	start := time.Now()
	st, err := store.Open(path, nil)
	s.Latency = time.Since(start)
	if err != nil {
		var corrupt *store.CorruptError
		if errors.As(err, &corrupt) {
			s.Error = fmt.Sprintf("store file is corrupt, inspect it by hand: %v", corrupt.Err)
		} else {
			s.Error = err.Error()
		}
		return s
	}
	s.OK = true
	s.Detail = fmt.Sprintf("%s (%d objectives)", path, st.Count())
	return s
}

func checkAnthropic(ctx context.Context, cfg *config.Config) Status {
	s := Status{Component: "anthropic"}
	if err := cfg.RequireAnthropicKey(); err != nil {
		s.Error = err.Error()
		return s
	}

	base := cfg.Anthropic.BaseURL
	if base == "" {
		base = "https://api.anthropic.com"
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, "GET", strings.TrimRight(base, "/")+"/v1/models", nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	req.Header.Set("x-api-key", cfg.Anthropic.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := http.DefaultClient.Do(req)
	s.Latency = time.Since(start)
	if err != nil {
		s.Error = fmt.Sprintf("cannot reach Anthropic API: %s", friendlyError(err))
		return s
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 {
		s.Error = "invalid API key"
		return s
	}
	s.OK = true
	s.Detail = cfg.Anthropic.Model
	return s
}

func friendlyError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "no such host") {
		return "host not found (check your network)"
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "connection timed out"
	}
	if strings.Contains(msg, "connection refused") {
		return "connection refused"
	}
	return msg
}
