package middleware

import (
	"context"
	"net/http"
	"strings"

	"counselbook/models"
	"counselbook/utils"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

// JWTVerifier accepts HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	Secret []byte
}

func (v JWTVerifier) Verify(_ context.Context, token string) (models.Identity, error) {
	return utils.IdentityFromToken(v.Secret, token)
}

// IDTokenVerifier is the subset of the Firebase Auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens; role comes from a custom claim.
type FirebaseVerifier struct {
	Client IDTokenVerifier
}

func (v FirebaseVerifier) Verify(ctx context.Context, token string) (models.Identity, error) {
	tok, err := v.Client.VerifyIDToken(ctx, token)
	if err != nil {
		return models.Identity{}, err
	}
	claims := make(map[string]interface{}, len(tok.Claims)+1)
	for k, val := range tok.Claims {
		claims[k] = val
	}
	claims["uid"] = tok.UID
	return utils.IdentityFromClaims(claims)
}

// IdentityMiddleware authenticates the bearer token and stores the identity on the context.
func IdentityMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		id, err := verifier.Verify(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.GetLogger().Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		SetIdentity(c, id)
		c.Next()
	}
}

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c *gin.Context, id models.Identity) {
	c.Set(identityKey, id)
}

// GetIdentity returns the identity set by IdentityMiddleware.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
