package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the verified caller.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Verifier authenticates an incoming request.
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) (Identity, error)
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
