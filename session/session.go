package session

import "github.com/chatterbox/chatterbox-go/users"

// Session is the client-side record of authentication state. IsAuthenticated
// is true iff Token is non-empty and was last validated successfully against
// the profile endpoint; IsLoading tracks the transient authenticating state.
type Session struct {
	User            *users.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Err             string
}

// Credentials is the transient login input. It is never stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the payload for creating a new account.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
