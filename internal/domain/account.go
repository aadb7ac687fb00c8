package domain

type AccountID string

// Account is a connectable marketing data source: a Google Ads account, a
// Meta Ads account, or a bare user-level placeholder. At most one account is
// selected per session; selection is persisted server-side.
type Account struct {
	ID               AccountID
	Name             string
	DisplayName      string
	GoogleAdsID      string
	GA4PropertyID    string
	MetaAdsID        string
	FacebookPageID   string
	FacebookPageName string
	HubspotPortalID  string
	// BusinessType is display-only; the coordinator never branches on it.
	BusinessType  string
	AccountType   string
	SelectedMCCID string
}

// FindAccount returns the account with the given id from the list, or nil.
func FindAccount(accounts []Account, id AccountID) *Account {
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i]
		}
	}
	return nil
}
