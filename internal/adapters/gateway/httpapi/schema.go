package httpapi

import (
	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/ports"
)

// Wire shapes for the backend API. Several endpoints went through a response
// rename (tenant_id vs id, active_tenant vs tenant); the raw types keep both
// and resolve at conversion time.

type validateResponse struct {
	Valid           bool         `json:"valid"`
	User            *rawUser     `json:"user"`
	SelectedAccount *rawSelected `json:"selected_account"`
	UserAuth        *rawPlatform `json:"user_authenticated"`
	Platforms       *rawPlatform `json:"platforms"`
}

type rawPlatform struct {
	Google bool `json:"google"`
	Meta   bool `json:"meta"`
}

type rawSelected struct {
	ID string `json:"id"`
}

type rawUser struct {
	UserID              string `json:"user_id"`
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	PictureURL          string `json:"picture_url"`
	Picture             string `json:"picture"`
	HasSeenIntro        bool   `json:"has_seen_intro"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

func (u *rawUser) toProfile() *domain.UserProfile {
	if u == nil {
		return nil
	}
	id := u.UserID
	if id == "" {
		id = u.ID
	}
	picture := u.PictureURL
	if picture == "" {
		picture = u.Picture
	}
	return &domain.UserProfile{
		ID:                  id,
		Name:                u.Name,
		Email:               u.Email,
		PictureURL:          picture,
		HasSeenIntro:        u.HasSeenIntro,
		OnboardingCompleted: u.OnboardingCompleted,
	}
}

func (v validateResponse) toValidation() ports.SessionValidation {
	out := ports.SessionValidation{
		Valid: v.Valid,
		User:  v.User.toProfile(),
	}
	if v.SelectedAccount != nil {
		out.SelectedAccountID = domain.AccountID(v.SelectedAccount.ID)
	}
	platforms := v.UserAuth
	if platforms == nil {
		platforms = v.Platforms
	}
	if platforms != nil {
		out.GoogleAuthed = platforms.Google
		out.MetaAuthed = platforms.Meta
	}
	return out
}

type authURLResponse struct {
	AuthURL string `json:"auth_url"`
}

type completeResponse struct {
	Success bool     `json:"success"`
	User    *rawUser `json:"user"`
}

type statusResponse struct {
	Authenticated        bool         `json:"authenticated"`
	NeedsSessionCreation bool         `json:"needs_session_creation"`
	UserInfo             *rawUser     `json:"user_info"`
	SelectedAccount      *rawSelected `json:"selected_account"`
}

func (s statusResponse) toStatus() ports.AuthStatus {
	out := ports.AuthStatus{
		Authenticated:        s.Authenticated,
		NeedsSessionCreation: s.NeedsSessionCreation,
		User:                 s.UserInfo.toProfile(),
	}
	if s.SelectedAccount != nil {
		out.SelectedAccountID = domain.AccountID(s.SelectedAccount.ID)
	}
	return out
}

type accountsResponse struct {
	Accounts []rawAccount `json:"accounts"`
}

type rawAccount struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	GoogleAdsID      string `json:"google_ads_id"`
	GA4PropertyID    string `json:"ga4_property_id"`
	MetaAdsID        string `json:"meta_ads_id"`
	FacebookPageID   string `json:"facebook_page_id"`
	FacebookPageName string `json:"facebook_page_name"`
	HubspotPortalID  string `json:"hubspot_portal_id"`
	BusinessType     string `json:"business_type"`
	AccountType      string `json:"google_ads_account_type"`
	SelectedMCCID    string `json:"selected_mcc_id"`
}

func (a rawAccount) toAccount() domain.Account {
	display := a.DisplayName
	if display == "" {
		display = a.Name
	}
	return domain.Account{
		ID:               domain.AccountID(a.ID),
		Name:             a.Name,
		DisplayName:      display,
		GoogleAdsID:      a.GoogleAdsID,
		GA4PropertyID:    a.GA4PropertyID,
		MetaAdsID:        a.MetaAdsID,
		FacebookPageID:   a.FacebookPageID,
		FacebookPageName: a.FacebookPageName,
		HubspotPortalID:  a.HubspotPortalID,
		BusinessType:     a.BusinessType,
		AccountType:      a.AccountType,
		SelectedMCCID:    a.SelectedMCCID,
	}
}

type selectAccountRequest struct {
	AccountID string `json:"account_id"`
	SessionID string `json:"session_id"`
	Industry  string `json:"industry,omitempty"`
}

type selectAccountResponse struct {
	Success   bool          `json:"success"`
	Workspace *rawWorkspace `json:"workspace"`
}

type rawWorkspace struct {
	ID                  string   `json:"id"`
	TenantID            string   `json:"tenant_id"`
	Name                string   `json:"name"`
	Slug                string   `json:"slug"`
	Role                string   `json:"role"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
	ConnectedPlatforms  []string `json:"connected_platforms"`
	MemberCount         int      `json:"member_count"`
	IsActive            bool     `json:"is_active"`
}

func (w *rawWorkspace) resolveID() string {
	if w.ID != "" {
		return w.ID
	}
	return w.TenantID
}

func (w rawWorkspace) toWorkspace() domain.Workspace {
	memberCount := w.MemberCount
	if memberCount == 0 {
		memberCount = 1
	}
	platforms := w.ConnectedPlatforms
	if platforms == nil {
		platforms = []string{}
	}
	return domain.Workspace{
		TenantID:            w.resolveID(),
		Name:                w.Name,
		Slug:                w.Slug,
		Role:                domain.ParseRole(w.Role),
		OnboardingCompleted: w.OnboardingCompleted,
		ConnectedPlatforms:  platforms,
		MemberCount:         memberCount,
		IsActive:            w.IsActive,
	}
}

type workspacesResponse struct {
	Workspaces []rawWorkspace `json:"workspaces"`
	Tenants    []rawWorkspace `json:"tenants"`
}

type currentWorkspaceResponse struct {
	Tenant       *rawWorkspace `json:"tenant"`
	ActiveTenant *rawWorkspace `json:"active_tenant"`
}

type createWorkspaceRequest struct {
	Name string `json:"name"`
}

type createWorkspaceResponse struct {
	Success  bool          `json:"success"`
	Tenant   *rawWorkspace `json:"tenant"`
	TenantID string        `json:"tenant_id"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
}

type switchWorkspaceRequest struct {
	TenantID string `json:"tenant_id"`
}
