package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes JWT payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT embedding the caller-supplied email.
// The claim is signed as given; verifying the identity behind it is the login
// flow's responsibility, not the issuer's.
func (tm *TokenManager) GenerateToken(email string) (string, time.Time, error) {
	return tm.GenerateTokenWithClaims(email, nil)
}

// GenerateTokenWithClaims signs the email plus any extra caller-supplied
// claims. Extras are carried verbatim, but the email, subject, and timestamp
// claims always come from the issuer and cannot be overridden.
func (tm *TokenManager) GenerateTokenWithClaims(email string, extra map[string]any) (string, time.Time, error) {
	if email == "" {
		return "", time.Time{}, errors.New("email is required")
	}
	now := time.Now()
	expiresAt := now.Add(tm.ttl)

	claims := jwt.MapClaims{}
	for key, value := range extra {
		claims[key] = value
	}
	claims["email"] = email
	claims["sub"] = email
	claims["exp"] = jwt.NewNumericDate(expiresAt)
	claims["iat"] = jwt.NewNumericDate(now)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Email == "" {
		return nil, errors.New("token missing email claim")
	}
	return claims, nil
}
