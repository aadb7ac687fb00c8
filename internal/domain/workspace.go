package domain

// WorkspaceRole is the caller's role within a workspace.
type WorkspaceRole string

const (
	RoleOwner   WorkspaceRole = "owner"
	RoleAdmin   WorkspaceRole = "admin"
	RoleAnalyst WorkspaceRole = "analyst"
	RoleViewer  WorkspaceRole = "viewer"
)

// ParseRole maps a backend role string onto a known role. Unknown or empty
// strings degrade to viewer rather than erroring.
func ParseRole(raw string) WorkspaceRole {
	switch WorkspaceRole(raw) {
	case RoleOwner, RoleAdmin, RoleAnalyst, RoleViewer:
		return WorkspaceRole(raw)
	default:
		return RoleViewer
	}
}

// Workspace is a collaborative tenant owning accounts, credentials, and
// platform connections. At most one workspace is active per session.
type Workspace struct {
	TenantID            string
	Name                string
	Slug                string
	Role                WorkspaceRole
	OnboardingCompleted bool
	ConnectedPlatforms  []string
	MemberCount         int
	IsActive            bool
}

// FindWorkspace returns the workspace with the given tenant id, or nil.
func FindWorkspace(workspaces []Workspace, tenantID string) *Workspace {
	for i := range workspaces {
		if workspaces[i].TenantID == tenantID {
			return &workspaces[i]
		}
	}
	return nil
}
