package domain

// UserProfile is the provider-reported profile of the signed-in user.
type UserProfile struct {
	ID                  string
	Name                string
	Email               string
	PictureURL          string
	HasSeenIntro        bool
	OnboardingCompleted bool
}

// Identity is one provider's authentication record. Zero value means
// "not authenticated with this provider".
type Identity struct {
	Authenticated bool
	Profile       *UserProfile
}
