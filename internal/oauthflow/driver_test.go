package oauthflow

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mialabs/mia-session/internal/adapters/store/memory"
	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/ports"
)

type stubGateway struct {
	ports.Gateway

	authURL    string
	authURLErr error
	lastReq    ports.AuthURLRequest
}

func (g *stubGateway) AuthURL(_ context.Context, _ domain.Provider, _ string, req ports.AuthURLRequest) (string, error) {
	g.lastReq = req
	return g.authURL, g.authURLErr
}

type fakeNavigator struct {
	mu       sync.Mutex
	location *url.URL
	visited  []string
}

func (n *fakeNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visited = append(n.visited, target)
}

func (n *fakeNavigator) Reload() {}

func (n *fakeNavigator) Location() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *fakeNavigator) StripQuery() {}

type fakePopup struct {
	mu         sync.Mutex
	closed     bool
	closeCalls int
}

func (p *fakePopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeCalls++
}

type fakeBrowser struct {
	popup   *fakePopup
	openErr error
}

func (b *fakeBrowser) OpenPopup(string) (ports.Popup, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.popup, nil
}

func newDriver(gateway *stubGateway, browser *fakeBrowser, nav *fakeNavigator) (*Driver, *memory.Store) {
	store := memory.NewStore()
	return &Driver{
		Gateway:      gateway,
		Store:        store,
		Browser:      browser,
		Nav:          nav,
		PollInterval: 5 * time.Millisecond,
		LoginTimeout: time.Second,
	}, store
}

func TestStartRedirectPersistsPendingFlagBeforeNavigating(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{authURL: "https://auth.example.com/start"}
	nav := &fakeNavigator{location: &url.URL{Scheme: "https", Host: "app.example.com", Path: "/reports"}}
	driver, store := newDriver(gateway, &fakeBrowser{}, nav)

	err := driver.StartRedirect(context.Background(), domain.ProviderGoogle, "session-1", "")
	require.NoError(t, err)

	pending, ok := store.Get("mia_oauth_pending")
	require.True(t, ok)
	assert.Equal(t, "google", pending)

	returnURL, ok := store.Get("mia_oauth_return_url")
	require.True(t, ok)
	assert.Equal(t, "https://app.example.com/reports", returnURL)
	assert.Equal(t, "https://app.example.com/reports", gateway.lastReq.ReturnURL)

	require.Len(t, nav.visited, 1)
	assert.Equal(t, "https://auth.example.com/start", nav.visited[0])
}

func TestStartRedirectPassesTenantScope(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{authURL: "https://auth.example.com/start"}
	driver, _ := newDriver(gateway, &fakeBrowser{}, &fakeNavigator{})

	err := driver.StartRedirect(context.Background(), domain.ProviderMeta, "session-1", "tenant-9")
	require.NoError(t, err)
	assert.Equal(t, "tenant-9", gateway.lastReq.TenantID)
}

func TestStartRedirectRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	driver, store := newDriver(&stubGateway{}, &fakeBrowser{}, &fakeNavigator{})

	err := driver.StartRedirect(context.Background(), domain.Provider("github"), "session-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)

	_, ok := store.Get("mia_oauth_pending")
	assert.False(t, ok)
}

func TestStartRedirectLeavesNoPendingFlagOnGatewayError(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{authURLErr: errors.New("backend unavailable")}
	nav := &fakeNavigator{}
	driver, store := newDriver(gateway, &fakeBrowser{}, nav)

	err := driver.StartRedirect(context.Background(), domain.ProviderGoogle, "session-1", "")
	require.Error(t, err)

	_, ok := store.Get("mia_oauth_pending")
	assert.False(t, ok)
	assert.Empty(t, nav.visited)
}

func TestPendingRedirectRoundTrip(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{authURL: "https://auth.example.com/start"}
	driver, _ := newDriver(gateway, &fakeBrowser{}, &fakeNavigator{})

	_, ok := driver.PendingRedirect()
	assert.False(t, ok)

	require.NoError(t, driver.StartRedirect(context.Background(), domain.ProviderGoogle, "session-1", ""))

	provider, ok := driver.PendingRedirect()
	require.True(t, ok)
	assert.Equal(t, domain.ProviderGoogle, provider)

	driver.ClearPendingRedirect()
	_, ok = driver.PendingRedirect()
	assert.False(t, ok)
}

func TestPendingRedirectIgnoresCorruptValue(t *testing.T) {
	t.Parallel()

	driver, store := newDriver(&stubGateway{}, &fakeBrowser{}, &fakeNavigator{})
	require.NoError(t, store.Set("mia_oauth_pending", "not-a-provider"))

	_, ok := driver.PendingRedirect()
	assert.False(t, ok)
}

func TestRunPopupSurfacesBlockedPopup(t *testing.T) {
	t.Parallel()

	driver, _ := newDriver(&stubGateway{}, &fakeBrowser{openErr: domain.ErrPopupBlocked}, &fakeNavigator{})

	ok, err := driver.RunPopup(context.Background(), "https://auth.example.com/start", func(context.Context) (bool, error) {
		t.Fatal("complete must not run when the popup is blocked")
		return false, nil
	})
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrPopupBlocked)
}

func TestRunPopupCompletesAfterPopupCloses(t *testing.T) {
	t.Parallel()

	popup := &fakePopup{}
	driver, _ := newDriver(&stubGateway{}, &fakeBrowser{popup: popup}, &fakeNavigator{})

	go func() {
		time.Sleep(20 * time.Millisecond)
		popup.Close()
	}()

	completed := false
	ok, err := driver.RunPopup(context.Background(), "https://auth.example.com/start", func(context.Context) (bool, error) {
		completed = true
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, completed)
}

func TestRunPopupTimesOutAndForceClosesPopup(t *testing.T) {
	t.Parallel()

	popup := &fakePopup{}
	driver, _ := newDriver(&stubGateway{}, &fakeBrowser{popup: popup}, &fakeNavigator{})
	driver.LoginTimeout = 30 * time.Millisecond

	ok, err := driver.RunPopup(context.Background(), "https://auth.example.com/start", func(context.Context) (bool, error) {
		t.Fatal("complete must not run after timeout")
		return false, nil
	})
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrLoginTimeout)
	assert.True(t, popup.Closed())
}

func TestRunPopupStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	popup := &fakePopup{}
	driver, _ := newDriver(&stubGateway{}, &fakeBrowser{popup: popup}, &fakeNavigator{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	ok, err := driver.RunPopup(ctx, "https://auth.example.com/start", func(context.Context) (bool, error) {
		return true, nil
	})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, popup.Closed())
}
