package ports

import "net/url"

// Popup is a handle to an open secondary browser window. The popup transport
// polls Closed and force-closes on timeout.
type Popup interface {
	Closed() bool
	Close()
}

// Browser opens popup windows. OpenPopup must fail fast (domain.ErrPopupBlocked)
// when the environment refuses to open one.
type Browser interface {
	OpenPopup(authURL string) (Popup, error)
}

// Navigator abstracts the page-level location the coordinator runs under.
//
// Navigate replaces the whole page and is fire-and-forget: the redirect
// transport schedules it and returns, and nothing meaningful may be sequenced
// after it. Reload re-enters initialization from scratch (workspace switches
// rely on this instead of incremental state patching).
type Navigator interface {
	Navigate(authURL string)
	Reload()
	// Location is the current address including any return query appended by
	// the provider redirect.
	Location() *url.URL
	// StripQuery removes the query string from the visible address so a manual
	// reload does not re-enter a completed flow.
	StripQuery()
}
