package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	stateadapter "github.com/mialabs/mia-session/internal/adapters/render/state"
	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/session"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var showSessionID bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session: identities, accounts, workspaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}
			return writeSnapshot(cmd, app, coord.Snapshot(), asJSON, showSessionID)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showSessionID, "show-session", false, "Include the raw session id")

	return cmd
}

// snapshotPayload is the JSON shape of a session snapshot. Enumerations go
// out as strings so the output is stable across refactors.
type snapshotPayload struct {
	Phase               string             `json:"phase"`
	SessionID           string             `json:"session_id,omitempty"`
	Error               string             `json:"error,omitempty"`
	User                *userPayload       `json:"user,omitempty"`
	GoogleConnected     bool               `json:"google_connected"`
	MetaConnected       bool               `json:"meta_connected"`
	SelectedAccountID   string             `json:"selected_account_id,omitempty"`
	AvailableAccounts   []accountPayload   `json:"available_accounts"`
	ActiveTenantID      string             `json:"active_tenant_id,omitempty"`
	AvailableWorkspaces []workspacePayload `json:"available_workspaces"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type accountPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type workspacePayload struct {
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	MemberCount int    `json:"member_count"`
	Active      bool   `json:"active"`
}

func buildSnapshotPayload(snapshot session.State, showSessionID bool) snapshotPayload {
	payload := snapshotPayload{
		Phase:               snapshot.Phase.String(),
		Error:               snapshot.Error,
		GoogleConnected:     snapshot.Google.Authenticated,
		MetaConnected:       snapshot.Meta.Authenticated,
		AvailableAccounts:   []accountPayload{},
		AvailableWorkspaces: []workspacePayload{},
	}
	if showSessionID {
		payload.SessionID = snapshot.SessionID
	}
	if user := snapshot.User(); user != nil {
		payload.User = &userPayload{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	if snapshot.SelectedAccount != nil {
		payload.SelectedAccountID = string(snapshot.SelectedAccount.ID)
	}
	for _, account := range snapshot.AvailableAccounts {
		payload.AvailableAccounts = append(payload.AvailableAccounts, accountPayload{
			ID:       string(account.ID),
			Name:     account.Name,
			Selected: snapshot.SelectedAccount != nil && snapshot.SelectedAccount.ID == account.ID,
		})
	}
	if snapshot.ActiveWorkspace != nil {
		payload.ActiveTenantID = snapshot.ActiveWorkspace.TenantID
	}
	for _, workspace := range snapshot.AvailableWorkspaces {
		payload.AvailableWorkspaces = append(payload.AvailableWorkspaces, workspacePayload{
			TenantID:    workspace.TenantID,
			Name:        workspace.Name,
			Role:        string(workspace.Role),
			MemberCount: workspace.MemberCount,
			Active:      snapshot.ActiveWorkspace != nil && snapshot.ActiveWorkspace.TenantID == workspace.TenantID,
		})
	}
	return payload
}

func writeSnapshot(cmd *cobra.Command, app *app, snapshot session.State, asJSON, showSessionID bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(buildSnapshotPayload(snapshot, showSessionID))
	}

	rendered, err := app.stateRenderer(snapshot, stateadapter.RenderOptions{ShowSessionID: showSessionID})
	if err != nil {
		return fmt.Errorf("render session: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// snapshotError converts a recorded action failure into a command error so
// the process exit code reflects it.
func snapshotError(snapshot session.State) error {
	if snapshot.Error == "" {
		return nil
	}
	return fmt.Errorf("%s", snapshot.Error)
}

func providerFlagValue(raw string) (domain.Provider, error) {
	provider := domain.Provider(raw)
	if !provider.Valid() {
		return "", fmt.Errorf("unknown provider %q (google or meta)", raw)
	}
	return provider, nil
}
