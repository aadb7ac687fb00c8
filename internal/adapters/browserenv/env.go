// Package browserenv adapts a desktop environment to the browser-shaped
// ports the session coordinator expects. Popups become system-browser
// launches paired with a loopback landing server, and navigation becomes a
// recorded location plus a reload flag the host process can act on.
package browserenv

import (
	"errors"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"sync"

	"github.com/mialabs/mia-session/internal/ports"
)

// Env implements ports.Browser and ports.Navigator for a terminal host.
type Env struct {
	// OpenCommand overrides the platform browser launcher. The auth URL is
	// appended as the final argument.
	OpenCommand []string
	// ListenAddr pins the landing server address, mostly for tests.
	ListenAddr string
	Logger     *slog.Logger

	mu              sync.Mutex
	location        *url.URL
	reloadRequested bool
}

var _ ports.Browser = (*Env)(nil)
var _ ports.Navigator = (*Env)(nil)

func New(logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{Logger: logger}
}

func (e *Env) openCommand(target string) *exec.Cmd {
	if len(e.OpenCommand) > 0 {
		args := append(append([]string{}, e.OpenCommand...), target)
		return exec.Command(args[0], args[1:]...)
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return exec.Command("xdg-open", target)
	}
}

// OpenPopup starts a landing server, launches the system browser at the auth
// URL, and returns a popup whose Closed signal is the browser landing back.
func (e *Env) OpenPopup(authURL string) (ports.Popup, error) {
	if authURL == "" {
		return nil, errors.New("auth url is required")
	}

	landing, err := StartLandingServer(e.ListenAddr)
	if err != nil {
		return nil, err
	}

	cmd := e.openCommand(authURL)
	if err := cmd.Start(); err != nil {
		landing.Close()
		return nil, err
	}
	go func() { _ = cmd.Wait() }()

	e.Logger.Info("opened browser for login", "landing_url", landing.LandingURL())

	return &systemPopup{env: e, landing: landing}, nil
}

// Navigate opens the target in the system browser. On a real page this would
// replace the document; here the process stays alive, so we only record the
// target and hand off to the browser.
func (e *Env) Navigate(target string) {
	cmd := e.openCommand(target)
	if err := cmd.Start(); err != nil {
		e.Logger.Warn("could not open browser", "error", err)
		return
	}
	go func() { _ = cmd.Wait() }()
}

func (e *Env) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reloadRequested = true
}

// ConsumeReload reports whether a reload was requested since the last call
// and resets the flag. The host loop uses this to re-run initialization.
func (e *Env) ConsumeReload() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	requested := e.reloadRequested
	e.reloadRequested = false
	return requested
}

func (e *Env) Location() *url.URL {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.location == nil {
		return nil
	}
	copied := *e.location
	return &copied
}

// SetLocation records the current logical location, for example the landing
// URL captured after a redirect login.
func (e *Env) SetLocation(loc *url.URL) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.location = loc
}

func (e *Env) StripQuery() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.location == nil {
		return
	}
	stripped := *e.location
	stripped.RawQuery = ""
	stripped.Fragment = ""
	e.location = &stripped
}

type systemPopup struct {
	env     *Env
	landing *LandingServer

	mu     sync.Mutex
	closed bool
}

func (p *systemPopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return true
	}
	landed, ok := p.landing.Landed()
	if !ok {
		return false
	}
	p.closed = true
	p.env.SetLocation(landed)
	_ = p.landing.Close()
	return true
}

func (p *systemPopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	_ = p.landing.Close()
}
