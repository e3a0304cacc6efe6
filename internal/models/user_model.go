package models

// User is the signed-in identity as the application sees it: the auth
// provider's identity record merged with the isAdmin flag from the companion
// `users` document keyed by UID.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Identity is the bare record returned by the auth provider, before the
// companion document has been consulted.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	// IDToken is the provider-issued credential for this identity. It is never
	// serialized into application state.
	IDToken string `json:"-"`
}

// Credentials are the email/password pair used for sign-in and sign-up.
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
