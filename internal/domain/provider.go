package domain

// Provider identifies an identity provider the coordinator can authenticate
// against. The two identities are independent: a user may hold either one or
// both at the same time.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderMeta   Provider = "meta"
)

func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderMeta
}

func (p Provider) String() string {
	return string(p)
}

// Providers lists every supported provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderMeta}
}
