package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// Caller roles carried in the "role" claim.
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

// TokenSigner issues and validates HS256 tokens for customers and providers.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret string) (*TokenSigner, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &TokenSigner{secret: []byte(secret)}, nil
}

// GenerateToken creates a signed JWT token with the given subject (user or
// company id) and role. The token expires after the specified duration.
func (s *TokenSigner) GenerateToken(subject, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func (s *TokenSigner) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
}

// ExtractClaims returns the subject and role of a valid token.
func (s *TokenSigner) ExtractClaims(tokenString string) (subject, role string, err error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ = claims["role"].(string)
	if role != RoleCustomer && role != RoleProvider {
		return "", "", errors.New("token does not contain a valid 'role' claim")
	}

	return sub, role, nil
}
