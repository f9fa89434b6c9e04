package auth

import (
	"context"
	"net/http"
	"strings"
)

// HeaderVerifier trusts X-User-Id and friends without checking anything.
// Use this ONLY for local development and tests.
type HeaderVerifier struct{}

func (HeaderVerifier) Verify(_ context.Context, r *http.Request) (Identity, error) {
	uid := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if uid == "" {
		return Identity{}, ErrMissingToken
	}
	return Identity{
		UID:         uid,
		Email:       r.Header.Get("X-User-Email"),
		DisplayName: r.Header.Get("X-User-Name"),
		PhotoURL:    r.Header.Get("X-User-Photo"),
	}, nil
}
