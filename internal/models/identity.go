package models

import "time"

// Identity providers.
const (
	ProviderAnonymous = "anonymous"
	ProviderCustom    = "custom"
)

// Identity is a user established by the identity service.
type Identity struct {
	UID          string    `json:"uid"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	LastSignInAt time.Time `json:"last_sign_in_at"`
}

// IsAnonymous reports whether the identity was created without a credential.
func (i *Identity) IsAnonymous() bool {
	return i.Provider == ProviderAnonymous
}
