package auth

import "context"

// Authenticator verifies the trusted front-end clients (chat bots, web apps)
// that sign users in on their own and exchange that sign-in for a ledger token.
// This abstraction allows swapping how clients prove themselves (shared
// secrets, mTLS, OAuth client credentials) without changing the service layer.
type Authenticator interface {
	// Authenticate returns nil when the client presented a valid credential.
	Authenticate(ctx context.Context, clientID, credential string) error
}
