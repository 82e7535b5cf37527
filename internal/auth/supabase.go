package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// SupabaseProvider implements Provider on top of the supabase auth API.
// SignIn and Refresh go through the shared client so the postgrest and
// storage sub-clients pick up the new tokens as well.
type SupabaseProvider struct {
	client *supabase.Client
}

func NewSupabaseProvider(client *supabase.Client) *SupabaseProvider {
	return &SupabaseProvider{client: client}
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	s, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return Session{}, fmt.Errorf("supabase sign-in: %w", err)
	}
	return fromTypesSession(s), nil
}

func (p *SupabaseProvider) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	s, err := p.client.RefreshToken(refreshToken)
	if err != nil {
		return Session{}, fmt.Errorf("supabase token refresh: %w", err)
	}
	return fromTypesSession(s), nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, accessToken string) error {
	if err := p.client.Auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("supabase sign-out: %w", err)
	}
	return nil
}

func fromTypesSession(s types.Session) Session {
	out := Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.User.ID.String(),
	}
	if s.ExpiresIn > 0 {
		out.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	} else {
		out.ExpiresAt = TokenExpiry(s.AccessToken)
	}
	return out
}
