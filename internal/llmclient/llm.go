// Package llmclient wraps the model providers the configuration
// assistant can talk to. Clients return plain text; JSON extraction and
// fallback parsing live in the assistant package.
package llmclient

import (
	"context"
	"errors"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// ErrNoProviders reports that no provider has a usable credential.
var ErrNoProviders = errors.New("no AI providers configured")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Client is one model provider. Complete runs a single prompt to text.
type Client interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Chain tries each client in order and returns the first success. A
// PermanentError from a provider still falls through to the next one;
// an error surfaces only when every provider failed.
type Chain struct {
	clients []Client
}

func NewChain(clients ...Client) *Chain {
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if c != nil {
			out = append(out, c)
		}
	}
	return &Chain{clients: out}
}

// Empty reports whether no provider is configured.
func (c *Chain) Empty() bool { return c == nil || len(c.clients) == 0 }

// Providers lists the configured provider names.
func (c *Chain) Providers() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.clients))
	for _, cl := range c.clients {
		names = append(names, cl.Name())
	}
	return names
}

// Complete walks the provider priority order.
func (c *Chain) Complete(ctx context.Context, prompt string) (string, error) {
	if c.Empty() {
		return "", ErrNoProviders
	}
	var errs []error
	for _, cl := range c.clients {
		out, err := cl.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}

func (c *Chain) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, cl := range c.clients {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
