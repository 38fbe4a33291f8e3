package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/goccy/go-json"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/id"
)

const (
	tokenIssuer   = "catalog-server"
	tokenAudience = "catalog-client"
)

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte symmetric key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}
	return &TokenService{key: symmetric, duration: duration, now: time.Now}, nil
}

// Duration returns the configured token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// Issue creates an encrypted access token for user.
func (s *TokenService) Issue(user *domain.User) (string, *Claims, error) {
	now := s.now()
	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", nil, fmt.Errorf("generate token ID: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.Username)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.duration))
	token.SetJti(tokenID)
	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("username", user.Username)
	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("role", user.Role)

	claims := &Claims{
		Username:  user.Username,
		Role:      user.Role,
		TokenID:   tokenID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.duration),
	}
	return token.V4Encrypt(s.key, nil), claims, nil
}

// Verify decrypts tokenString and checks issuer, audience and validity window.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Username == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("invalid token: missing subject claims")
	}
	return &claims, nil
}
