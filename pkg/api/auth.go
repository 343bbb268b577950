package api

// IssueTokenRequest is sent by a trusted front-end after it signed the user in.
type IssueTokenRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	User         User   `json:"user"`
}

type IssueTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
