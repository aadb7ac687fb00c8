package ports

import (
	"context"

	"github.com/mialabs/mia-session/internal/domain"
)

// SessionValidation is the backend's answer to "is this session id still
// good, and for whom".
type SessionValidation struct {
	Valid             bool
	User              *domain.UserProfile
	SelectedAccountID domain.AccountID
	GoogleAuthed      bool
	MetaAuthed        bool
}

// AuthURLRequest carries the optional context for authorization URL issuance.
// ReturnURL matters for the redirect transport; TenantID matters for Meta,
// whose linking is workspace-scoped.
type AuthURLRequest struct {
	ReturnURL string
	TenantID  string
}

// AuthStatus is the provider-side authentication probe result.
type AuthStatus struct {
	Authenticated bool
	// NeedsSessionCreation signals that provider credentials exist but the
	// backend session was logged out; completing auth re-creates it.
	NeedsSessionCreation bool
	User                 *domain.UserProfile
	SelectedAccountID    domain.AccountID
}

// CompleteResult is returned by the OAuth completion endpoint.
type CompleteResult struct {
	User *domain.UserProfile
}

// SelectAccountResult reports an account selection, including a workspace the
// backend may have auto-provisioned for a first-run user.
type SelectAccountResult struct {
	Workspace *CreatedWorkspace
}

// CreatedWorkspace is the minimal record returned by workspace creation.
type CreatedWorkspace struct {
	TenantID string
	Name     string
	Slug     string
}

// CurrentWorkspace is the backend's partial record of the active tenant. It
// may reference a tenant the workspace list has not caught up with yet.
type CurrentWorkspace struct {
	TenantID            string
	Name                string
	Slug                string
	Role                string
	OnboardingCompleted bool
	ConnectedPlatforms  []string
	MemberCount         int
}

// Gateway is the backend contract the coordinator drives. Implementations are
// stateless request functions; every error is a transport or backend failure,
// never business state.
type Gateway interface {
	ValidateSession(ctx context.Context, sessionID string) (SessionValidation, error)

	AuthURL(ctx context.Context, provider domain.Provider, sessionID string, req AuthURLRequest) (string, error)
	CompleteAuth(ctx context.Context, provider domain.Provider, sessionID, providerUserID string) (CompleteResult, error)
	AuthStatus(ctx context.Context, provider domain.Provider, sessionID string) (AuthStatus, error)
	Logout(ctx context.Context, provider domain.Provider, sessionID string) error

	AvailableAccounts(ctx context.Context, sessionID string) ([]domain.Account, error)
	SelectAccount(ctx context.Context, sessionID string, accountID domain.AccountID, industry string) (SelectAccountResult, error)

	Workspaces(ctx context.Context, sessionID string) ([]domain.Workspace, error)
	ActiveWorkspace(ctx context.Context, sessionID string) (*CurrentWorkspace, error)
	CreateWorkspace(ctx context.Context, sessionID, name string) (CreatedWorkspace, error)
	SwitchWorkspace(ctx context.Context, sessionID, tenantID string) error
	DeleteWorkspace(ctx context.Context, sessionID, tenantID string) error
}
