package auth

import (
	"context"
)

// JWTVerifier verifies locally issued access tokens against the revocation list.
type JWTVerifier struct {
	jwt     *JWTManager
	revoked RevocationList
}

func NewJWTVerifier(jwt *JWTManager, revoked RevocationList) *JWTVerifier {
	return &JWTVerifier{jwt: jwt, revoked: revoked}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := v.jwt.ParseAndValidate(token)
	if err != nil {
		return nil, ErrInvalidToken.WithCause(err)
	}

	revoked, err := v.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, ErrProviderFailed.WithCause(err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// Revoke invalidates a token until its own expiry. Unparsable tokens are ignored.
func (v *JWTVerifier) Revoke(ctx context.Context, token string) error {
	claims, err := v.jwt.ParseAndValidate(token)
	if err != nil {
		return nil
	}
	return v.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
