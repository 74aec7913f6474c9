package model

// CredentialKey is the storage key under which a client's upload token is kept.
const CredentialKey = "odv_secret"

// TokenState is the result of reading a client's stored credential once at
// initialization. Credential is the raw stored value ("" when none is stored).
type TokenState struct {
	Credential   string
	EntryVisible bool
}

// NewTokenState derives the auth-entry visibility from a stored credential.
// An empty credential counts as no credential.
func NewTokenState(credential string) TokenState {
	return TokenState{
		Credential:   credential,
		EntryVisible: credential == "",
	}
}

// HasCredential reports whether a non-empty credential is stored.
func (s TokenState) HasCredential() bool {
	return s.Credential != ""
}
