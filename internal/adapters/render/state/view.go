package state

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/session"
)

type RenderOptions struct {
	// ShowSessionID includes the raw session id in the header. Off by
	// default since the id mostly matters for support tickets.
	ShowSessionID bool
}

func renderView(snapshot session.State, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Mia Session"),
		s.header.Render("phase: " + snapshot.Phase.String()),
	}
	if opts.ShowSessionID && snapshot.SessionID != "" {
		lines = append(lines, s.header.Render("session: "+snapshot.SessionID))
	}

	if snapshot.Error != "" {
		lines = append(lines, s.warning.Render("error: "+snapshot.Error))
	}
	if snapshot.IsLoading {
		suffix := ""
		if snapshot.ConnectingPlatform != "" {
			suffix = fmt.Sprintf(" (connecting %s)", snapshot.ConnectingPlatform)
		}
		lines = append(lines, s.detail.Render("working..."+suffix))
	}

	lines = append(lines, s.section.Render(renderIdentities(snapshot, s)))
	lines = append(lines, s.section.Render(renderAccounts(snapshot, s)))
	lines = append(lines, s.section.Render(renderWorkspaces(snapshot, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderIdentities(snapshot session.State, s styles) string {
	parts := []string{s.identity.Render("Identities")}

	if user := snapshot.User(); user != nil {
		who := user.Name
		if user.Email != "" {
			who = fmt.Sprintf("%s <%s>", user.Name, user.Email)
		}
		parts = append(parts, s.detail.Render("user: "+who))
	}

	parts = append(parts,
		identityLine("google", snapshot.Google, s),
		identityLine("meta", snapshot.Meta, s),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func identityLine(label string, identity domain.Identity, s styles) string {
	if identity.Authenticated {
		return s.connected.Render(fmt.Sprintf("  %s: connected", label))
	}
	return s.absent.Render(fmt.Sprintf("  %s: not connected", label))
}

func renderAccounts(snapshot session.State, s styles) string {
	parts := []string{s.identity.Render(fmt.Sprintf("Accounts (%d)", len(snapshot.AvailableAccounts)))}

	if len(snapshot.AvailableAccounts) == 0 && snapshot.SelectedAccount == nil {
		parts = append(parts, s.empty.Render("  none available"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, account := range snapshot.AvailableAccounts {
		marker := "  "
		style := s.detail
		if snapshot.SelectedAccount != nil && snapshot.SelectedAccount.ID == account.ID {
			marker = "* "
			style = s.active
		}
		parts = append(parts, style.Render(marker+accountLabel(account)))
	}

	if snapshot.SelectedAccount != nil && domain.FindAccount(snapshot.AvailableAccounts, snapshot.SelectedAccount.ID) == nil {
		parts = append(parts, s.active.Render("* "+accountLabel(*snapshot.SelectedAccount)+" (no longer listed)"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountLabel(account domain.Account) string {
	name := strings.TrimSpace(account.DisplayName)
	if name == "" {
		name = strings.TrimSpace(account.Name)
	}
	if name == "" {
		name = string(account.ID)
	}
	return fmt.Sprintf("%s (%s)", name, account.ID)
}

func renderWorkspaces(snapshot session.State, s styles) string {
	parts := []string{s.identity.Render(fmt.Sprintf("Workspaces (%d)", len(snapshot.AvailableWorkspaces)))}

	if len(snapshot.AvailableWorkspaces) == 0 {
		parts = append(parts, s.empty.Render("  none"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, workspace := range snapshot.AvailableWorkspaces {
		marker := "  "
		style := s.detail
		if snapshot.ActiveWorkspace != nil && snapshot.ActiveWorkspace.TenantID == workspace.TenantID {
			marker = "* "
			style = s.active
		}
		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			style.Render(marker+workspace.Name),
			" ",
			s.roleMeta.Render(fmt.Sprintf("(%s, %d members)", workspace.Role, workspace.MemberCount)),
		)
		parts = append(parts, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
