package session

import (
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Identity is the set of claims the application cares about.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DecodedToken is the decoder's view of a raw bearer string. IssuedAt and
// ExpiresAt are epoch seconds, as embedded in the token.
type DecodedToken struct {
	Identity  Identity
	IssuedAt  int64
	ExpiresAt int64
}

// Decoder extracts the identity and validity window from a raw bearer string.
// Implementations decide the token format; the manager never does.
type Decoder interface {
	Decode(raw string) (DecodedToken, error)
}

type jwtClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTDecoder reads JWT claims without verifying the signature. The API
// verifies signatures on every request; the record kept here is expiry
// bookkeeping, not a trust root.
type JWTDecoder struct {
	parser *jwt.Parser
}

// NewJWTDecoder returns a decoder for JWT bearer tokens.
func NewJWTDecoder() *JWTDecoder {
	return &JWTDecoder{parser: jwt.NewParser()}
}

// Decode implements Decoder.
func (d *JWTDecoder) Decode(raw string) (DecodedToken, error) {
	claims := &jwtClaims{}
	if _, _, err := d.parser.ParseUnverified(raw, claims); err != nil {
		return DecodedToken{}, fmt.Errorf("decode token: %w", err)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return DecodedToken{}, errors.New("decode token: missing iat or exp claim")
	}

	return DecodedToken{
		Identity: Identity{
			ID:    claims.Subject,
			Email: claims.Email,
			Name:  claims.Name,
		},
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}
