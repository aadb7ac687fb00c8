package browserenv

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

var ErrLandingTimeout = errors.New("timed out waiting for login landing")

// LandingServer is a loopback HTTP server that receives the final hop of a
// hosted login. The auth backend redirects the finished session here, which
// is how a terminal process learns the user is done with the browser.
type LandingServer struct {
	listener  net.Listener
	server    *http.Server
	landedCh  chan *url.URL
	sendOnce  sync.Once
	closeOnce sync.Once
}

func StartLandingServer(listenAddr string) (*LandingServer, error) {
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen landing server: %w", err)
	}

	ls := &LandingServer{
		listener: listener,
		landedCh: make(chan *url.URL, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/landed", ls.handleLanded)

	ls.server = &http.Server{Handler: mux}

	go func() {
		if serveErr := ls.server.Serve(ls.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			ls.trySend(nil)
		}
	}()

	return ls, nil
}

// LandingURL is the address the auth backend should redirect to once the
// hosted flow finishes.
func (l *LandingServer) LandingURL() string {
	if tcpAddr, ok := l.listener.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://localhost:%d/auth/landed", tcpAddr.Port)
	}
	return "http://localhost/auth/landed"
}

// WaitForLanding blocks until the browser lands back or the timeout elapses.
// The returned URL carries whatever query parameters the backend appended.
func (l *LandingServer) WaitForLanding(timeout time.Duration) (*url.URL, error) {
	defer l.Close()

	select {
	case landed := <-l.landedCh:
		if landed == nil {
			return nil, errors.New("landing server stopped before landing")
		}
		return landed, nil
	case <-time.After(timeout):
		return nil, ErrLandingTimeout
	}
}

// Landed reports without blocking whether the browser has come back yet.
func (l *LandingServer) Landed() (*url.URL, bool) {
	select {
	case landed := <-l.landedCh:
		if landed == nil {
			return nil, false
		}
		// Re-arm so later callers observe the same result.
		l.landedCh <- landed
		return landed, true
	default:
		return nil, false
	}
}

func (l *LandingServer) Close() error {
	var closeErr error
	l.closeOnce.Do(func() {
		closeErr = l.server.Close()
	})
	return closeErr
}

func (l *LandingServer) handleLanded(w http.ResponseWriter, r *http.Request) {
	landed := *r.URL
	if landed.Host == "" {
		landed.Scheme = "http"
		landed.Host = r.Host
	}

	l.trySend(&landed)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Login complete. You can close this tab."))
}

func (l *LandingServer) trySend(landed *url.URL) {
	l.sendOnce.Do(func() {
		l.landedCh <- landed
	})
}
