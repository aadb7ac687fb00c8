// Package oauthflow drives one login attempt to completion or failure,
// abstracting over the two client-side transports: full-page redirect and
// popup-with-polling. It does not touch session state; the coordinator passes
// in a completion callback and applies results itself.
package oauthflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/ports"
)

const (
	// Storage keys for the redirect transport's cross-reload handoff.
	keyOAuthPending   = "mia_oauth_pending"
	keyOAuthReturnURL = "mia_oauth_return_url"

	DefaultPollInterval = 3 * time.Second
	DefaultLoginTimeout = 5 * time.Minute
)

// Driver runs OAuth transports against one Gateway/DurableStore pair.
type Driver struct {
	Gateway ports.Gateway
	Store   ports.DurableStore
	Browser ports.Browser
	Nav     ports.Navigator
	Logger  *slog.Logger

	// PollInterval is the popup-closed polling cadence.
	PollInterval time.Duration
	// LoginTimeout force-closes a popup that never closes on its own.
	LoginTimeout time.Duration
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// StartRedirect begins a redirect-transport login. It captures the current
// location before anything else (a concurrent navigation must not change the
// return target under us), persists the pending flag, and schedules the
// page navigation. It returns once navigation is scheduled; the flow finishes
// on the next initialization, not here, so callers must not sequence further
// login logic after a nil return.
func (d *Driver) StartRedirect(ctx context.Context, provider domain.Provider, sessionID, tenantID string) error {
	if !provider.Valid() {
		return domain.ErrInvalidProvider
	}

	returnURL := ""
	if loc := d.Nav.Location(); loc != nil {
		returnURL = loc.Scheme + "://" + loc.Host + loc.Path
	}

	authURL, err := d.Gateway.AuthURL(ctx, provider, sessionID, ports.AuthURLRequest{
		ReturnURL: returnURL,
		TenantID:  tenantID,
	})
	if err != nil {
		return fmt.Errorf("get auth url: %w", err)
	}

	if err := d.Store.Set(keyOAuthPending, provider.String()); err != nil {
		return fmt.Errorf("persist oauth pending flag: %w", err)
	}
	if err := d.Store.Set(keyOAuthReturnURL, returnURL); err != nil {
		return fmt.Errorf("persist oauth return url: %w", err)
	}

	d.logger().Info("starting redirect login", "provider", provider, "return_url", returnURL)
	d.Nav.Navigate(authURL)
	return nil
}

// PendingRedirect reports a redirect flow left in flight by a previous page
// lifetime, if any.
func (d *Driver) PendingRedirect() (domain.Provider, bool) {
	raw, ok := d.Store.Get(keyOAuthPending)
	if !ok {
		return "", false
	}
	provider := domain.Provider(raw)
	if !provider.Valid() {
		return "", false
	}
	return provider, true
}

// ClearPendingRedirect removes the one-shot redirect flags. Must be called as
// soon as the pending flow has been completed (or abandoned), so a later
// reload cannot replay it.
func (d *Driver) ClearPendingRedirect() {
	_ = d.Store.Delete(keyOAuthPending)
	_ = d.Store.Delete(keyOAuthReturnURL)
}

// RunPopup opens authURL in a popup and polls for it to close. Once closed,
// complete is invoked to finish the handshake against the backend; its result
// becomes RunPopup's result. The poll ticker and the hard timeout are both
// stopped on every exit path, so a late popup-close observed after timeout is
// inert.
func (d *Driver) RunPopup(ctx context.Context, authURL string, complete func(ctx context.Context) (bool, error)) (bool, error) {
	popup, err := d.Browser.OpenPopup(authURL)
	if err != nil {
		return false, fmt.Errorf("open login popup: %w", err)
	}

	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := d.LoginTimeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			popup.Close()
			return false, ctx.Err()

		case <-timer.C:
			ticker.Stop()
			popup.Close()
			d.logger().Warn("popup login timed out", "timeout", timeout)
			return false, domain.ErrLoginTimeout

		case <-ticker.C:
			if !popup.Closed() {
				continue
			}
			// Stop both handles before completing so nothing fires against
			// a flow that has already ended.
			ticker.Stop()
			timer.Stop()
			return complete(ctx)
		}
	}
}
