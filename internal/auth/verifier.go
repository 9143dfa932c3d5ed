// Package auth resolves the calling user. A TokenVerifier checks the
// bearer token and yields the external identity; the middleware then
// upserts the matching user row and stashes the internal id in the gin
// context for handlers.
package auth

import (
	"context"
	"fmt"

	"github.com/taskhive/taskhive-backend/config"
)

// Identity is what a verified token tells us about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// NewVerifier builds the verifier selected by AUTH_MODE.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (TokenVerifier, error) {
	switch cfg.Mode {
	case "firebase":
		client, err := InitializeFirebase(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return &firebaseVerifier{client: client}, nil
	case "jwt":
		return NewJWTVerifier(cfg.Secret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
