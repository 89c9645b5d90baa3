// Package sessionguard keeps the wizard's credential fresh in the
// background and, when the session is irrecoverably expired, preserves
// the draft before handing the user back to re-authentication.
package sessionguard

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"casewizard/internal/wizard/apiclient"
	"casewizard/internal/wizard/draft"
)

// Refresher is the slice of the API client the guardian needs.
type Refresher interface {
	Refresh(ctx context.Context, token string) (string, error)
}

// DraftHolder exposes the pieces of the wizard session the guardian must
// save on expiry. SaveDraft persists the current wizard state.
type DraftHolder interface {
	SaveDraft() error
}

// Callbacks let the host surface notices and perform the redirect; both
// are optional.
type Callbacks struct {
	// Notify surfaces a non-blocking message to the user.
	Notify func(message string)
	// Redirect sends the user to re-authentication. Invoked after
	// RedirectDelay so the draft save completes and the notice is
	// readable.
	Redirect func()
}

// Guardian refreshes the stored credential on a fixed interval. A 401/403
// from the refresh endpoint expires the session; any other failure is
// logged and retried on the next tick.
type Guardian struct {
	client   Refresher
	store    *draft.Store
	session  DraftHolder
	cb       Callbacks
	interval time.Duration
	delay    time.Duration

	mu      sync.Mutex
	expired bool
}

const (
	defaultInterval      = 4 * time.Minute
	defaultRedirectDelay = 2 * time.Second
)

func New(client Refresher, store *draft.Store, session DraftHolder, cb Callbacks) *Guardian {
	return &Guardian{
		client:   client,
		store:    store,
		session:  session,
		cb:       cb,
		interval: defaultInterval,
		delay:    defaultRedirectDelay,
	}
}

// SetInterval overrides the refresh cadence (tests use short intervals).
func (g *Guardian) SetInterval(interval, redirectDelay time.Duration) {
	if interval > 0 {
		g.interval = interval
	}
	if redirectDelay >= 0 {
		g.delay = redirectDelay
	}
}

// Run ticks until ctx is cancelled. It never blocks the caller; start it
// with `go g.Run(ctx)`.
func (g *Guardian) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tick(ctx)
		}
	}
}

// Expired reports whether the guardian has declared the session dead.
func (g *Guardian) Expired() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.expired
}

func (g *Guardian) tick(ctx context.Context) {
	cred, ok, err := g.store.Credential()
	if err != nil {
		log.Printf("sessionguard: read credential: %v", err)
		return
	}
	if !ok {
		return
	}
	refreshWith := strings.TrimSpace(cred.RefreshToken)
	if refreshWith == "" {
		refreshWith = strings.TrimSpace(cred.AccessToken)
	}
	if refreshWith == "" {
		return
	}

	newToken, err := g.client.Refresh(ctx, refreshWith)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			g.HandleSessionExpired(ctx)
			return
		}
		// Transient (network blip, 5xx): keep the session, retry next
		// tick.
		log.Printf("sessionguard: refresh failed, will retry: %v", err)
		return
	}

	cred.AccessToken = newToken
	if err := g.store.SetCredential(cred); err != nil {
		log.Printf("sessionguard: store refreshed credential: %v", err)
	}
}

// HandleSessionExpired saves the draft unconditionally, surfaces a
// notice, and schedules the redirect. Safe to call more than once; only
// the first call acts.
func (g *Guardian) HandleSessionExpired(ctx context.Context) {
	g.mu.Lock()
	if g.expired {
		g.mu.Unlock()
		return
	}
	g.expired = true
	g.mu.Unlock()

	if g.session != nil {
		if err := g.session.SaveDraft(); err != nil {
			log.Printf("sessionguard: draft save on expiry failed: %v", err)
		}
	}
	if g.cb.Notify != nil {
		g.cb.Notify("Your session has expired. Your draft has been saved; please sign in again.")
	}
	if g.cb.Redirect == nil {
		return
	}
	go func() {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			g.cb.Redirect()
		}
	}()
}
