package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/supabase-community/supabase-go"
)

// SupabaseVerifier resolves Supabase access tokens through the GoTrue API.
type SupabaseVerifier struct {
	client *supabase.Client
}

func NewSupabaseVerifier(client *supabase.Client) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

func (v *SupabaseVerifier) Verify(_ context.Context, r *http.Request) (Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return Identity{UID: user.ID.String(), Email: user.Email}, nil
}
