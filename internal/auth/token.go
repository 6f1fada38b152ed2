package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification errors. Expired and malformed tokens surface to
// clients identically, but the distinction is kept for logging.
var (
	ErrTokenExpired    = errors.New("token has expired")
	ErrTokenMalformed  = errors.New("token is malformed")
	ErrTokenInvalidSig = errors.New("token signature is invalid")
)

// Claims is the payload carried by a bearer token. The user id travels in
// the standard subject claim.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenService issues and verifies signed, time-limited bearer tokens.
// Secret and expiry are fixed at construction.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue creates a signed token carrying the user identity, valid for the
// configured expiry from now.
func (s *TokenService) Issue(userID, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature and expiry and returns its claims.
// Any verification failure yields no claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalidSig
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// GenerateTokenSecret creates a random 32-byte secret for token signing.
func GenerateTokenSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// mapJWTError maps jwt library errors to the package sentinels.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrSignatureInvalid),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenInvalidSig
	default:
		return ErrTokenMalformed
	}
}
