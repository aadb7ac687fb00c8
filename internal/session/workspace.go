package session

import (
	"context"

	"github.com/mialabs/mia-session/internal/domain"
)

// RefreshWorkspaces re-fetches workspace membership and reconciles the active
// workspace. An active tenant missing from the fresh list keeps its stale
// object; with no active workspace and a non-empty list, the first entry is
// adopted so the session never sits on "no workspace" when one exists.
func (c *Coordinator) RefreshWorkspaces(ctx context.Context) {
	sessionID, err := c.requireSession()
	if err != nil {
		return
	}

	workspaces, err := c.gateway.Workspaces(ctx, sessionID)
	if err != nil {
		c.logger.Warn("workspace refresh failed", "error", err)
		return
	}

	c.mutate(func(s *State) {
		s.AvailableWorkspaces = workspaces

		if s.ActiveWorkspace != nil {
			if fresh := domain.FindWorkspace(workspaces, s.ActiveWorkspace.TenantID); fresh != nil {
				fresh.IsActive = true
				s.ActiveWorkspace = fresh
			}
			return
		}
		if len(workspaces) > 0 {
			workspaces[0].IsActive = true
			s.ActiveWorkspace = &workspaces[0]
		}
	})
}

// CreateWorkspace provisions a workspace and adopts it optimistically as the
// active one with the caller as owner. Returns nil with State.Error set on
// failure.
func (c *Coordinator) CreateWorkspace(ctx context.Context, name string) *domain.Workspace {
	sessionID, err := c.requireSession()
	if err != nil {
		c.setError("No session available, reload and try again")
		return nil
	}
	if name == "" {
		c.setError("Workspace name is required")
		return nil
	}

	c.mutate(func(s *State) {
		s.Error = ""
		s.IsLoading = true
	})

	created, err := c.gateway.CreateWorkspace(ctx, sessionID, name)
	if err != nil {
		c.logger.Warn("workspace creation failed", "name", name, "error", err)
		c.setError("Could not create the workspace, try again")
		return nil
	}

	workspace := domain.Workspace{
		TenantID:           created.TenantID,
		Name:               created.Name,
		Slug:               created.Slug,
		Role:               domain.RoleOwner,
		ConnectedPlatforms: []string{},
		MemberCount:        1,
		IsActive:           true,
	}

	c.mutate(func(s *State) {
		if domain.FindWorkspace(s.AvailableWorkspaces, workspace.TenantID) == nil {
			s.AvailableWorkspaces = append(s.AvailableWorkspaces, workspace)
		}
		s.ActiveWorkspace = &workspace
		s.IsLoading = false
	})

	c.logger.Info("workspace created", "tenant_id", workspace.TenantID, "name", workspace.Name)
	return &workspace
}

// SwitchWorkspace changes the active tenant server-side and then reloads.
// Local state is deliberately not patched: every consumer re-derives from a
// clean initialization against the new tenant, which is the only way to keep
// accounts, connections, and workspace-scoped data coherent after a switch.
func (c *Coordinator) SwitchWorkspace(ctx context.Context, tenantID string) bool {
	sessionID, err := c.requireSession()
	if err != nil {
		c.setError("No session available, reload and try again")
		return false
	}
	if tenantID == "" {
		c.setError("Choose a workspace first")
		return false
	}

	if err := c.gateway.SwitchWorkspace(ctx, sessionID, tenantID); err != nil {
		c.logger.Warn("workspace switch failed", "tenant_id", tenantID, "error", err)
		c.setError("Could not switch workspace, try again")
		return false
	}

	c.logger.Info("workspace switched, reloading", "tenant_id", tenantID)
	c.nav.Reload()
	return true
}

// DeleteWorkspace removes a workspace. Deleting the active workspace falls
// back to the first remaining one, or none.
func (c *Coordinator) DeleteWorkspace(ctx context.Context, tenantID string) bool {
	sessionID, err := c.requireSession()
	if err != nil {
		c.setError("No session available, reload and try again")
		return false
	}
	if tenantID == "" {
		c.setError("Choose a workspace first")
		return false
	}

	if err := c.gateway.DeleteWorkspace(ctx, sessionID, tenantID); err != nil {
		c.logger.Warn("workspace deletion failed", "tenant_id", tenantID, "error", err)
		c.setError("Could not delete the workspace, try again")
		return false
	}

	c.mutate(func(s *State) {
		activeTenant := ""
		if s.ActiveWorkspace != nil {
			activeTenant = s.ActiveWorkspace.TenantID
		}

		// Filter into a fresh slice; the active pointer may alias the old
		// backing array and an in-place shift would silently repoint it.
		remaining := make([]domain.Workspace, 0, len(s.AvailableWorkspaces))
		for _, ws := range s.AvailableWorkspaces {
			if ws.TenantID != tenantID {
				remaining = append(remaining, ws)
			}
		}
		s.AvailableWorkspaces = remaining

		switch {
		case activeTenant == "":
		case activeTenant == tenantID:
			if len(remaining) > 0 {
				remaining[0].IsActive = true
				s.ActiveWorkspace = &remaining[0]
			} else {
				s.ActiveWorkspace = nil
			}
		default:
			// The active workspace survives the deletion; re-resolve its
			// pointer into the new list. A stale active object absent from
			// the list keeps the one it had.
			if found := domain.FindWorkspace(remaining, activeTenant); found != nil {
				found.IsActive = true
				s.ActiveWorkspace = found
			}
		}
	})

	c.logger.Info("workspace deleted", "tenant_id", tenantID)
	return true
}
