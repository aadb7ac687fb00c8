package session

import "github.com/mialabs/mia-session/internal/domain"

// Phase is the coordinator's lifecycle position. It only ever moves forward
// through initialization; the single backward edge is logout, which lands on
// Anonymous with a fresh session id.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseAnonymous
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is one immutable view of the session. Snapshots are detached copies;
// later mutations of the live state never show through them.
type State struct {
	Phase     Phase
	SessionID string

	// IsLoading covers initialization and any in-flight action that will
	// mutate identity or selection.
	IsLoading bool
	// HasSeenIntro survives logout so returning users skip the intro.
	HasSeenIntro bool
	// Error is the last user-facing failure, empty when none. Actions
	// overwrite it; ClearError resets it.
	Error string

	Google domain.Identity
	Meta   domain.Identity

	// ConnectingPlatform is the provider with a login in flight, empty
	// otherwise. Set synchronously when a pending redirect is detected so
	// the first render already shows the connecting treatment.
	ConnectingPlatform domain.Provider

	SelectedAccount   *domain.Account
	AvailableAccounts []domain.Account

	ActiveWorkspace     *domain.Workspace
	AvailableWorkspaces []domain.Workspace
}

// Authenticated reports whether at least one provider identity is live.
func (s State) Authenticated() bool {
	return s.Google.Authenticated || s.Meta.Authenticated
}

// User returns the primary profile: Google's when present, Meta's otherwise.
func (s State) User() *domain.UserProfile {
	if s.Google.Profile != nil {
		return s.Google.Profile
	}
	return s.Meta.Profile
}

func (s State) clone() State {
	out := s
	out.AvailableAccounts = append([]domain.Account(nil), s.AvailableAccounts...)
	out.AvailableWorkspaces = append([]domain.Workspace(nil), s.AvailableWorkspaces...)
	out.Google.Profile = cloneProfile(s.Google.Profile)
	out.Meta.Profile = cloneProfile(s.Meta.Profile)
	if s.SelectedAccount != nil {
		account := *s.SelectedAccount
		out.SelectedAccount = &account
	}
	if s.ActiveWorkspace != nil {
		workspace := *s.ActiveWorkspace
		workspace.ConnectedPlatforms = append([]string(nil), s.ActiveWorkspace.ConnectedPlatforms...)
		out.ActiveWorkspace = &workspace
	}
	return out
}

func cloneProfile(p *domain.UserProfile) *domain.UserProfile {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}
