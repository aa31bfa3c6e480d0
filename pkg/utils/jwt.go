package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTypeAccess = "access"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims carried by an access token. Role is informational only; callers
// must resolve the current role from the user store.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Type string `json:"typ"`
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

type RefreshToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// GenerateAccessToken signs an HS256 JWT for the user.
func GenerateAccessToken(secret string, userID uuid.UUID, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
		Type: tokenTypeAccess,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return AccessToken{Token: signed, ExpiresAt: exp}, nil
}

// ParseAccessToken verifies signature, expiry and token type and returns the subject.
func ParseAccessToken(secret, tokenString string) (uuid.UUID, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, nil, ErrTokenExpired
		}
		return uuid.Nil, nil, ErrInvalidToken
	}
	if !token.Valid || claims.Type != tokenTypeAccess {
		return uuid.Nil, nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, ErrInvalidToken
	}

	return userID, claims, nil
}

// NewRefreshToken returns a random 48-byte hex token and the hash to persist.
func NewRefreshToken(ttl time.Duration) (RefreshToken, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}

	raw := hex.EncodeToString(buf)
	return RefreshToken{
		Raw:       raw,
		Hash:      HashRefreshToken(raw),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
