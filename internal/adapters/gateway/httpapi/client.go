package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/ports"
)

const maxResponseBytes = 1 << 20

const sessionHeader = "X-Session-ID"

// Client implements ports.Gateway against the backend HTTP API. It is
// stateless; the session id travels with every request.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.Gateway = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL}
}

func (c *Client) ValidateSession(ctx context.Context, sessionID string) (ports.SessionValidation, error) {
	var payload validateResponse
	path := "/api/session/validate?session_id=" + url.QueryEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, sessionID, nil, &payload); err != nil {
		return ports.SessionValidation{}, fmt.Errorf("validate session: %w", err)
	}
	return payload.toValidation(), nil
}

func (c *Client) AuthURL(ctx context.Context, provider domain.Provider, sessionID string, req ports.AuthURLRequest) (string, error) {
	if !provider.Valid() {
		return "", domain.ErrInvalidProvider
	}

	params := url.Values{}
	if req.ReturnURL != "" {
		params.Set("frontend_origin", req.ReturnURL)
	}
	if req.TenantID != "" {
		params.Set("tenant_id", req.TenantID)
	}
	path := "/api/oauth/" + provider.String() + "/auth-url"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload authURLResponse
	if err := c.do(ctx, http.MethodGet, path, sessionID, nil, &payload); err != nil {
		return "", fmt.Errorf("get %s auth url: %w", provider, err)
	}
	if payload.AuthURL == "" {
		return "", fmt.Errorf("get %s auth url: response missing auth_url", provider)
	}
	return payload.AuthURL, nil
}

func (c *Client) CompleteAuth(ctx context.Context, provider domain.Provider, sessionID, providerUserID string) (ports.CompleteResult, error) {
	if !provider.Valid() {
		return ports.CompleteResult{}, domain.ErrInvalidProvider
	}

	path := "/api/oauth/" + provider.String() + "/complete"
	if providerUserID != "" {
		path += "?user_id=" + url.QueryEscape(providerUserID)
	}

	var payload completeResponse
	if err := c.do(ctx, http.MethodPost, path, sessionID, nil, &payload); err != nil {
		return ports.CompleteResult{}, fmt.Errorf("complete %s auth: %w", provider, err)
	}
	return ports.CompleteResult{User: payload.User.toProfile()}, nil
}

func (c *Client) AuthStatus(ctx context.Context, provider domain.Provider, sessionID string) (ports.AuthStatus, error) {
	if !provider.Valid() {
		return ports.AuthStatus{}, domain.ErrInvalidProvider
	}

	var payload statusResponse
	path := "/api/oauth/" + provider.String() + "/status"
	if err := c.do(ctx, http.MethodGet, path, sessionID, nil, &payload); err != nil {
		return ports.AuthStatus{}, fmt.Errorf("get %s auth status: %w", provider, err)
	}
	return payload.toStatus(), nil
}

func (c *Client) Logout(ctx context.Context, provider domain.Provider, sessionID string) error {
	if !provider.Valid() {
		return domain.ErrInvalidProvider
	}

	path := "/api/oauth/" + provider.String() + "/logout"
	if err := c.do(ctx, http.MethodPost, path, sessionID, nil, nil); err != nil {
		return fmt.Errorf("logout %s: %w", provider, err)
	}
	return nil
}

func (c *Client) AvailableAccounts(ctx context.Context, sessionID string) ([]domain.Account, error) {
	var payload accountsResponse
	if err := c.do(ctx, http.MethodGet, "/api/accounts/available", sessionID, nil, &payload); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(payload.Accounts))
	for _, raw := range payload.Accounts {
		accounts = append(accounts, raw.toAccount())
	}
	return accounts, nil
}

func (c *Client) SelectAccount(ctx context.Context, sessionID string, accountID domain.AccountID, industry string) (ports.SelectAccountResult, error) {
	body := selectAccountRequest{
		AccountID: string(accountID),
		SessionID: sessionID,
		Industry:  industry,
	}

	var payload selectAccountResponse
	if err := c.do(ctx, http.MethodPost, "/api/accounts/select", sessionID, body, &payload); err != nil {
		return ports.SelectAccountResult{}, fmt.Errorf("select account: %w", err)
	}

	result := ports.SelectAccountResult{}
	if payload.Workspace != nil {
		result.Workspace = &ports.CreatedWorkspace{
			TenantID: payload.Workspace.resolveID(),
			Name:     payload.Workspace.Name,
			Slug:     payload.Workspace.Slug,
		}
	}
	return result, nil
}

func (c *Client) Workspaces(ctx context.Context, sessionID string) ([]domain.Workspace, error) {
	var payload workspacesResponse
	if err := c.do(ctx, http.MethodGet, "/api/tenants", sessionID, nil, &payload); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}

	raws := payload.Workspaces
	if len(raws) == 0 {
		raws = payload.Tenants
	}
	workspaces := make([]domain.Workspace, 0, len(raws))
	for _, raw := range raws {
		workspaces = append(workspaces, raw.toWorkspace())
	}
	return workspaces, nil
}

func (c *Client) ActiveWorkspace(ctx context.Context, sessionID string) (*ports.CurrentWorkspace, error) {
	var payload currentWorkspaceResponse
	if err := c.do(ctx, http.MethodGet, "/api/tenants/current", sessionID, nil, &payload); err != nil {
		return nil, fmt.Errorf("get active workspace: %w", err)
	}

	raw := payload.Tenant
	if raw == nil {
		raw = payload.ActiveTenant
	}
	if raw == nil || raw.resolveID() == "" {
		return nil, nil
	}

	return &ports.CurrentWorkspace{
		TenantID:            raw.resolveID(),
		Name:                raw.Name,
		Slug:                raw.Slug,
		Role:                raw.Role,
		OnboardingCompleted: raw.OnboardingCompleted,
		ConnectedPlatforms:  raw.ConnectedPlatforms,
		MemberCount:         raw.MemberCount,
	}, nil
}

func (c *Client) CreateWorkspace(ctx context.Context, sessionID, name string) (ports.CreatedWorkspace, error) {
	var payload createWorkspaceResponse
	if err := c.do(ctx, http.MethodPost, "/api/tenants", sessionID, createWorkspaceRequest{Name: name}, &payload); err != nil {
		return ports.CreatedWorkspace{}, fmt.Errorf("create workspace: %w", err)
	}

	created := ports.CreatedWorkspace{
		TenantID: payload.TenantID,
		Name:     payload.Name,
		Slug:     payload.Slug,
	}
	if payload.Tenant != nil {
		created.TenantID = payload.Tenant.resolveID()
		created.Name = payload.Tenant.Name
		created.Slug = payload.Tenant.Slug
	}
	if created.Name == "" {
		created.Name = name
	}
	if created.TenantID == "" {
		return ports.CreatedWorkspace{}, errors.New("create workspace: response missing tenant id")
	}
	return created, nil
}

func (c *Client) SwitchWorkspace(ctx context.Context, sessionID, tenantID string) error {
	body := switchWorkspaceRequest{TenantID: tenantID}
	if err := c.do(ctx, http.MethodPost, "/api/tenants/switch", sessionID, body, nil); err != nil {
		return fmt.Errorf("switch workspace: %w", err)
	}
	return nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, sessionID, tenantID string) error {
	path := "/api/tenants/" + url.PathEscape(tenantID)
	if err := c.do(ctx, http.MethodDelete, path, sessionID, nil, nil); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, sessionID string, body, out any) error {
	endpoint, err := buildURL(c.BaseURL, path)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("request %s: %s", path, decodeAPIError(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

type apiErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func decodeAPIError(resp *http.Response) string {
	var apiErr apiErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&apiErr); err != nil {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

func buildURL(baseURL, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("gateway base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse gateway base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("gateway base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("gateway base url host is required")
	}

	return strings.TrimRight(parsed.String(), "/") + path, nil
}
