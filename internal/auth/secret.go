package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid client id or secret")
	ErrWeakSecret         = errors.New("client secret must be at least 16 characters")
)

const minSecretLength = 16

// SecretAuthenticator implements client authentication with bcrypt-hashed shared secrets.
type SecretAuthenticator struct {
	hashes map[string][]byte
}

// NewSecretAuthenticator creates an authenticator for the given client id to
// bcrypt hash pairs.
func NewSecretAuthenticator(hashes map[string]string) *SecretAuthenticator {
	a := &SecretAuthenticator{hashes: make(map[string][]byte, len(hashes))}
	for clientID, hash := range hashes {
		a.hashes[clientID] = []byte(hash)
	}
	return a
}

// ParseClients parses "id:hash,id:hash" into a client id to hash map.
func ParseClients(value string) (map[string]string, error) {
	clients := make(map[string]string)
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		clientID, hash, ok := strings.Cut(entry, ":")
		if !ok || clientID == "" || hash == "" {
			return nil, fmt.Errorf("malformed client entry %q", entry)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("client %s: invalid bcrypt hash: %w", clientID, err)
		}
		clients[clientID] = hash
	}
	return clients, nil
}

// HashSecret hashes a new client secret for configuration.
func HashSecret(secret string) (string, error) {
	if len(secret) < minSecretLength {
		return "", ErrWeakSecret
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// Authenticate compares the secret with the client's stored hash.
func (a *SecretAuthenticator) Authenticate(ctx context.Context, clientID, credential string) error {
	hash, ok := a.hashes[clientID]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(credential)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
