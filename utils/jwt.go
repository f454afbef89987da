package utils

import (
	"errors"
	"time"

	"counselbook/models"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("jwt secret is not configured")
)

// GenerateToken signs an HS256 token carrying the identity claims.
// Used by operators and tests; production clients obtain tokens from the identity provider.
func GenerateToken(secret []byte, id models.Identity, duration time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":            id.UID,
		"email":          id.Email,
		"email_verified": id.EmailVerified,
		"role":           id.Role,
		"name":           id.Username,
		"iat":            now.Unix(),
		"exp":            now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
// An empty secret rejects every token.
func ValidateToken(secret []byte, tokenString string) (*jwt.Token, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// IdentityFromToken validates the token and maps its claims onto an Identity.
func IdentityFromToken(secret []byte, tokenString string) (models.Identity, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return models.Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}
	return IdentityFromClaims(claims)
}

// IdentityFromClaims maps a claim set shared by both token issuers onto an Identity.
// "uid" wins over "sub" when both are present.
func IdentityFromClaims(claims map[string]interface{}) (models.Identity, error) {
	var id models.Identity
	if uid, _ := claims["uid"].(string); uid != "" {
		id.UID = uid
	} else if sub, _ := claims["sub"].(string); sub != "" {
		id.UID = sub
	}
	if id.UID == "" {
		return models.Identity{}, errors.New("token does not contain a subject")
	}
	id.Email, _ = claims["email"].(string)
	id.EmailVerified, _ = claims["email_verified"].(bool)
	id.Username, _ = claims["name"].(string)
	id.Role, _ = claims["role"].(string)
	if id.Role == "" {
		id.Role = models.RoleStudent
	}
	return id, nil
}
