package model

// BlacklistEntry records a token revoked by logout.
//
// The raw token string is stored verbatim. Entries are never removed: a token
// listed here stays revoked even after its own expiry has passed.
type BlacklistEntry struct {
	Token string `json:"token"`
}
