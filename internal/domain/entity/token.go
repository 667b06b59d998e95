package entity

import "time"

// Token holds one user's Spotify credentials as persisted in the token store.
// Access tokens are short-lived bearer strings; Refresh is the long-lived
// credential used to mint new access tokens.
type Token struct {
	UID     string
	Access  string
	Refresh string
	Exp     time.Time
}

// ExpiresWithin reports whether the access token expires inside the given
// window. Used by the refresh cron to renew tokens before they lapse.
func (t *Token) ExpiresWithin(window time.Duration) bool {
	return time.Until(t.Exp) < window
}
