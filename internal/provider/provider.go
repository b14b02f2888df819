// Package provider holds the client for the AI text-completion service
// that rewrites raw objectives into SMART goal language.
package provider

import "context"

// Provider is a single-shot text completion service. Implementations must
// honor ctx cancellation and deadlines; the caller treats any error as
// "formatting unavailable" and falls back to the raw text.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}
