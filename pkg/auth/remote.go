package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// RemoteVerifier asks the provider's user endpoint to resolve the token.
// Every verification is one network round trip.
type RemoteVerifier struct {
	client *supabase.Client
}

func NewRemoteVerifier(url, anonKey string) (*RemoteVerifier, error) {
	client, err := supabase.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &RemoteVerifier{client: client}, nil
}

func (v *RemoteVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromUser(user)
}

func identityFromUser(user *types.UserResponse) (*Identity, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: user.ID, Email: user.Email}, nil
}
