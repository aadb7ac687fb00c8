package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/ports"
)

// Initialize brings the coordinator from Uninitialized to Anonymous or
// Authenticated. It runs once per Coordinator; embedders that reload create a
// fresh Coordinator and initialize again.
//
// A redirect login left pending by a previous page lifetime is finished here:
// the coordinator completes the handshake, clears the one-shot flag, then
// strips the return query, strictly in that order. Completing before clearing
// means a crash between the two replays a completion (idempotent on the
// backend) rather than losing a login.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		c.logger.Warn("initialize called twice, ignoring")
		return nil
	}
	c.initialized = true
	c.mu.Unlock()

	pendingProvider, pendingOK := c.flows.PendingRedirect()

	// Phase and connecting indicator move before any network work so the
	// first snapshot a consumer takes already shows them.
	c.mutate(func(s *State) {
		s.Phase = PhaseInitializing
		s.IsLoading = true
		if pendingOK {
			s.ConnectingPlatform = pendingProvider
		}
	})

	sessionID, hadStored := c.store.Get(keySessionID)
	if !hadStored || sessionID == "" {
		sessionID = c.mintSessionID()
		hadStored = false
	}
	c.mutate(func(s *State) { s.SessionID = sessionID })

	completedRedirect := false
	if pendingOK {
		completedRedirect = c.finishPendingRedirect(ctx, pendingProvider, sessionID)
	}

	if !hadStored && !completedRedirect {
		// Fresh device, nothing to validate.
		c.mutate(func(s *State) {
			s.Phase = PhaseAnonymous
			s.IsLoading = false
			s.ConnectingPlatform = ""
		})
		return nil
	}

	var (
		wg          sync.WaitGroup
		validation  ports.SessionValidation
		validateErr error
		accounts    []domain.Account
		workspaces  []domain.Workspace
		current     *ports.CurrentWorkspace
	)

	// The four reads are independent and each degrades on its own; a failed
	// accounts fetch must not take workspaces down with it, so no shared
	// cancellation across them.
	wg.Add(4)
	go func() {
		defer wg.Done()
		v, err := c.gateway.ValidateSession(ctx, sessionID)
		if err != nil {
			c.logger.Warn("session validation failed", "error", err)
			validateErr = err
			return
		}
		validation = v
	}()
	go func() {
		defer wg.Done()
		got, err := c.gateway.AvailableAccounts(ctx, sessionID)
		if err != nil {
			c.logger.Warn("account fetch failed", "error", err)
			return
		}
		accounts = got
	}()
	go func() {
		defer wg.Done()
		got, err := c.gateway.Workspaces(ctx, sessionID)
		if err != nil {
			c.logger.Warn("workspace fetch failed", "error", err)
			return
		}
		workspaces = got
	}()
	go func() {
		defer wg.Done()
		got, err := c.gateway.ActiveWorkspace(ctx, sessionID)
		if err != nil {
			c.logger.Warn("active workspace fetch failed", "error", err)
			return
		}
		current = got
	}()
	wg.Wait()

	if validateErr != nil {
		// Transport failure, not a verdict. Keep the stored id so the next
		// lifetime can try again, and run degraded until then.
		c.mutate(func(s *State) {
			s.Phase = PhaseAnonymous
			s.IsLoading = false
			s.ConnectingPlatform = ""
		})
		return nil
	}

	if !validation.Valid || validation.User == nil {
		// The backend no longer recognizes this id. Discard it so the next
		// lifetime starts clean instead of retrying a dead session forever.
		c.logger.Info("stored session rejected, starting anonymous", "session_id", sessionID)
		_ = c.store.Delete(keySessionID)
		fresh := c.mintSessionID()
		c.mutate(func(s *State) {
			s.Phase = PhaseAnonymous
			s.SessionID = fresh
			s.IsLoading = false
			s.ConnectingPlatform = ""
		})
		return nil
	}

	c.rememberLastUser(validation.User)

	active, list := resolveActiveWorkspace(workspaces, current)
	selected := domain.FindAccount(accounts, validation.SelectedAccountID)

	c.mutate(func(s *State) {
		s.Phase = PhaseAuthenticated
		s.IsLoading = false
		s.ConnectingPlatform = ""
		s.HasSeenIntro = validation.User.HasSeenIntro
		applyIdentity(s, validation)
		s.AvailableAccounts = accounts
		s.SelectedAccount = selected
		s.AvailableWorkspaces = list
		s.ActiveWorkspace = active
	})

	c.logger.Info("session initialized",
		"session_id", sessionID,
		"user_id", validation.User.ID,
		"accounts", len(accounts),
		"workspaces", len(list))
	return nil
}

// finishPendingRedirect completes a redirect login started before the last
// page teardown. Returns true when the backend confirmed the completion.
func (c *Coordinator) finishPendingRedirect(ctx context.Context, provider domain.Provider, sessionID string) bool {
	providerUserID := ""
	if loc := c.nav.Location(); loc != nil {
		providerUserID = loc.Query().Get("user_id")
	}

	_, err := c.gateway.CompleteAuth(ctx, provider, sessionID, providerUserID)
	if err != nil {
		c.logger.Warn("redirect completion failed", "provider", provider, "error", err)
	}

	// The flag and the return query are one-shot regardless of outcome; a
	// failed completion must not loop on every reload.
	c.flows.ClearPendingRedirect()
	c.nav.StripQuery()

	return err == nil
}

// applyIdentity maps a validation result onto the two provider identities.
// Both point at the same profile; the flags say which providers are live.
func applyIdentity(s *State, validation ports.SessionValidation) {
	profile := validation.User
	s.Google = domain.Identity{Authenticated: validation.GoogleAuthed, Profile: nil}
	s.Meta = domain.Identity{Authenticated: validation.MetaAuthed, Profile: nil}
	if validation.GoogleAuthed {
		s.Google.Profile = profile
	}
	if validation.MetaAuthed {
		s.Meta.Profile = profile
	}
	// A valid session with neither flag set still belongs to someone; treat
	// the primary identity as Google for display purposes.
	if !validation.GoogleAuthed && !validation.MetaAuthed {
		s.Google = domain.Identity{Authenticated: true, Profile: profile}
	}
}

// resolveActiveWorkspace reconciles the workspace list with the backend's
// partial record of the active tenant. When the record names a tenant the
// list has not caught up with, a placeholder is synthesized from the partial
// record rather than dropping the active workspace on the floor.
func resolveActiveWorkspace(list []domain.Workspace, current *ports.CurrentWorkspace) (*domain.Workspace, []domain.Workspace) {
	if current == nil || current.TenantID == "" {
		return nil, list
	}

	if found := domain.FindWorkspace(list, current.TenantID); found != nil {
		found.IsActive = true
		return found, list
	}

	placeholder := domain.Workspace{
		TenantID:            current.TenantID,
		Name:                current.Name,
		Slug:                current.Slug,
		Role:                domain.ParseRole(current.Role),
		OnboardingCompleted: current.OnboardingCompleted,
		ConnectedPlatforms:  current.ConnectedPlatforms,
		MemberCount:         current.MemberCount,
		IsActive:            true,
	}
	if placeholder.ConnectedPlatforms == nil {
		placeholder.ConnectedPlatforms = []string{}
	}
	if placeholder.MemberCount == 0 {
		placeholder.MemberCount = 1
	}

	list = append(list, placeholder)
	return &list[len(list)-1], list
}

var errNotInitialized = errors.New("coordinator not initialized")

// requireSession returns the current session id or records a user-facing
// error when initialization has not produced one.
func (c *Coordinator) requireSession() (string, error) {
	c.mu.RLock()
	initialized := c.initialized
	c.mu.RUnlock()
	if !initialized {
		return "", errNotInitialized
	}
	id := c.currentSessionID()
	if id == "" {
		return "", domain.ErrNoSession
	}
	return id, nil
}
