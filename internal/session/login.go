package session

import (
	"context"
	"errors"

	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/ports"
)

// Login starts a Google login over the configured transport. It returns true
// when the flow ended with a live Google identity (popup transport) or when
// the page handoff was scheduled (redirect transport, which finishes on the
// next initialization). Failures are recorded in State.Error, never returned.
func (c *Coordinator) Login(ctx context.Context) bool {
	return c.login(ctx, domain.ProviderGoogle)
}

// LoginMeta starts a Meta login. Meta linking is workspace-scoped, so the
// active tenant id rides along on the authorization URL. A live Google
// identity is preserved across the flow.
func (c *Coordinator) LoginMeta(ctx context.Context) bool {
	return c.login(ctx, domain.ProviderMeta)
}

func (c *Coordinator) login(ctx context.Context, provider domain.Provider) bool {
	sessionID, err := c.requireSession()
	if err != nil {
		c.setError("No session available, reload and try again")
		return false
	}

	tenantID := ""
	if provider == domain.ProviderMeta {
		if active := c.Snapshot().ActiveWorkspace; active != nil {
			tenantID = active.TenantID
		}
	}

	c.mutate(func(s *State) {
		s.Error = ""
		s.IsLoading = true
		s.ConnectingPlatform = provider
	})

	if c.transport == TransportRedirect {
		if err := c.flows.StartRedirect(ctx, provider, sessionID, tenantID); err != nil {
			c.logger.Warn("redirect login failed to start", "provider", provider, "error", err)
			c.setError("Could not start sign-in, try again")
			return false
		}
		// The page is being replaced; state stays in its connecting shape
		// until the next lifetime picks the flow back up.
		return true
	}

	authURL, err := c.gateway.AuthURL(ctx, provider, sessionID, ports.AuthURLRequest{TenantID: tenantID})
	if err != nil {
		c.logger.Warn("auth url fetch failed", "provider", provider, "error", err)
		c.setError("Could not start sign-in, try again")
		return false
	}

	ok, err := c.flows.RunPopup(ctx, authURL, func(ctx context.Context) (bool, error) {
		return c.completePopupLogin(ctx, provider)
	})
	if err != nil {
		c.logger.Warn("popup login failed", "provider", provider, "error", err)
		c.setError(loginErrorMessage(err))
		return false
	}
	if !ok {
		c.setError(loginErrorMessage(domain.ErrAuthFailed))
		return false
	}
	return true
}

// completePopupLogin runs once the popup closes. The session id is re-read
// from the store at this point, not captured at login start: a logout during
// the popup's lifetime replaced the id, and completing against the old one
// would bind the login to a discarded session.
func (c *Coordinator) completePopupLogin(ctx context.Context, provider domain.Provider) (bool, error) {
	sessionID := c.currentSessionID()
	if sessionID == "" {
		return false, domain.ErrNoSession
	}

	if _, err := c.gateway.CompleteAuth(ctx, provider, sessionID, ""); err != nil {
		c.logger.Warn("auth completion failed", "provider", provider, "error", err)
	}

	status, err := c.gateway.AuthStatus(ctx, provider, sessionID)
	if err != nil {
		return false, err
	}
	if !status.Authenticated || status.User == nil {
		// Closed the popup without finishing the provider consent.
		return false, nil
	}

	c.applyProviderLogin(provider, status)
	c.RefreshAccounts(ctx)
	c.RefreshWorkspaces(ctx)
	return true, nil
}

// applyProviderLogin merges one provider's fresh identity into state without
// touching the other provider.
func (c *Coordinator) applyProviderLogin(provider domain.Provider, status ports.AuthStatus) {
	c.rememberLastUser(status.User)
	c.mutate(func(s *State) {
		identity := domain.Identity{Authenticated: true, Profile: status.User}
		switch provider {
		case domain.ProviderGoogle:
			s.Google = identity
		case domain.ProviderMeta:
			s.Meta = identity
		}
		s.Phase = PhaseAuthenticated
		s.HasSeenIntro = true
		s.IsLoading = false
		s.ConnectingPlatform = ""
		s.Error = ""
	})
}

func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrPopupBlocked):
		return "Popup was blocked, allow popups and try again"
	case errors.Is(err, domain.ErrLoginTimeout):
		return "Sign-in timed out, try again"
	default:
		return "Sign-in did not complete, try again"
	}
}

// Logout invalidates the backend session for every live provider, discards
// the session id, and resets to Anonymous under a freshly minted id. The
// local reset happens regardless of backend failures; only HasSeenIntro and
// the last-user hint survive.
func (c *Coordinator) Logout(ctx context.Context) {
	sessionID := c.currentSessionID()
	snapshot := c.Snapshot()

	c.mutate(func(s *State) { s.IsLoading = true })

	if sessionID != "" {
		for _, provider := range domain.Providers() {
			authed := (provider == domain.ProviderGoogle && snapshot.Google.Authenticated) ||
				(provider == domain.ProviderMeta && snapshot.Meta.Authenticated)
			if !authed {
				continue
			}
			if err := c.gateway.Logout(ctx, provider, sessionID); err != nil {
				c.logger.Warn("backend logout failed", "provider", provider, "error", err)
			}
		}
	}

	_ = c.store.Delete(keySessionID)
	fresh := c.mintSessionID()

	c.mutate(func(s *State) {
		hasSeenIntro := s.HasSeenIntro
		*s = State{
			Phase:        PhaseAnonymous,
			SessionID:    fresh,
			HasSeenIntro: hasSeenIntro,
		}
	})
	c.logger.Info("logged out", "new_session_id", fresh)
}

// LogoutMeta disconnects only the Meta identity, leaving the session and any
// Google identity in place.
func (c *Coordinator) LogoutMeta(ctx context.Context) {
	sessionID := c.currentSessionID()
	if sessionID != "" {
		if err := c.gateway.Logout(ctx, domain.ProviderMeta, sessionID); err != nil {
			c.logger.Warn("meta logout failed", "error", err)
		}
	}
	c.mutate(func(s *State) {
		s.Meta = domain.Identity{}
		if !s.Google.Authenticated {
			s.Phase = PhaseAnonymous
		}
	})
}

// CheckExistingAuth probes whether provider credentials already exist for
// this device and adopts them without running a login flow. When the backend
// reports credentials but a logged-out session, completion is replayed to
// re-create the binding.
func (c *Coordinator) CheckExistingAuth(ctx context.Context) bool {
	return c.checkAuth(ctx, domain.ProviderGoogle)
}

// CheckMetaAuth is CheckExistingAuth for the Meta identity.
func (c *Coordinator) CheckMetaAuth(ctx context.Context) bool {
	return c.checkAuth(ctx, domain.ProviderMeta)
}

func (c *Coordinator) checkAuth(ctx context.Context, provider domain.Provider) bool {
	sessionID, err := c.requireSession()
	if err != nil {
		return false
	}

	status, err := c.gateway.AuthStatus(ctx, provider, sessionID)
	if err != nil {
		c.logger.Warn("auth status probe failed", "provider", provider, "error", err)
		return false
	}

	if status.NeedsSessionCreation && status.User != nil {
		if _, err := c.gateway.CompleteAuth(ctx, provider, sessionID, status.User.ID); err != nil {
			c.logger.Warn("session re-creation failed", "provider", provider, "error", err)
			return false
		}
		status.Authenticated = true
	}

	if !status.Authenticated || status.User == nil {
		return false
	}

	c.applyProviderLogin(provider, status)
	return true
}
