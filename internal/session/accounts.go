package session

import (
	"context"

	"github.com/mialabs/mia-session/internal/domain"
)

// RefreshAccounts re-fetches the available accounts and reconciles the
// current selection against them. A selection the fresh list no longer
// contains keeps its stale object: the backend still considers it selected,
// and the list endpoint lagging behind must not blank the UI.
func (c *Coordinator) RefreshAccounts(ctx context.Context) {
	sessionID, err := c.requireSession()
	if err != nil {
		return
	}

	accounts, err := c.gateway.AvailableAccounts(ctx, sessionID)
	if err != nil {
		c.logger.Warn("account refresh failed", "error", err)
		return
	}

	c.mutate(func(s *State) {
		s.AvailableAccounts = accounts
		if s.SelectedAccount != nil {
			if fresh := domain.FindAccount(accounts, s.SelectedAccount.ID); fresh != nil {
				s.SelectedAccount = fresh
			}
		}
	})
}

// SelectAccount makes accountID the session's selected account. The industry
// hint rides along for first-time selection, where the backend may
// auto-provision a workspace for the user; that workspace is adopted as the
// active one with the caller as owner. Returns false with State.Error set on
// failure.
func (c *Coordinator) SelectAccount(ctx context.Context, accountID domain.AccountID, industry string) bool {
	sessionID, err := c.requireSession()
	if err != nil {
		c.setError("No session available, reload and try again")
		return false
	}
	if accountID == "" {
		c.setError("Choose an account first")
		return false
	}

	c.mutate(func(s *State) {
		s.Error = ""
		s.IsLoading = true
	})

	result, err := c.gateway.SelectAccount(ctx, sessionID, accountID, industry)
	if err != nil {
		c.logger.Warn("account selection failed", "account_id", accountID, "error", err)
		c.setError("Could not select that account, try again")
		return false
	}

	c.mutate(func(s *State) {
		if found := domain.FindAccount(s.AvailableAccounts, accountID); found != nil {
			s.SelectedAccount = found
		} else {
			s.SelectedAccount = &domain.Account{ID: accountID}
		}

		if result.Workspace != nil && result.Workspace.TenantID != "" {
			created := domain.Workspace{
				TenantID:           result.Workspace.TenantID,
				Name:               result.Workspace.Name,
				Slug:               result.Workspace.Slug,
				Role:               domain.RoleOwner,
				ConnectedPlatforms: []string{},
				MemberCount:        1,
				IsActive:           true,
			}
			if domain.FindWorkspace(s.AvailableWorkspaces, created.TenantID) == nil {
				s.AvailableWorkspaces = append(s.AvailableWorkspaces, created)
			}
			s.ActiveWorkspace = &created
		}

		s.IsLoading = false
	})

	// The selection may have changed workspace membership server-side.
	c.RefreshWorkspaces(ctx)

	c.logger.Info("account selected", "account_id", accountID)
	return true
}

// MarkOnboardingComplete flips the local onboarding flags. The backend learns
// about completion through its own onboarding endpoints; this only keeps the
// session view in step.
func (c *Coordinator) MarkOnboardingComplete() {
	c.mutate(func(s *State) {
		if s.Google.Profile != nil {
			s.Google.Profile.OnboardingCompleted = true
		}
		if s.Meta.Profile != nil {
			s.Meta.Profile.OnboardingCompleted = true
		}
		if s.ActiveWorkspace != nil {
			s.ActiveWorkspace.OnboardingCompleted = true
			if found := domain.FindWorkspace(s.AvailableWorkspaces, s.ActiveWorkspace.TenantID); found != nil {
				found.OnboardingCompleted = true
			}
		}
	})
}
