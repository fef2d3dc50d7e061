package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

// SignToken issues the HS256 session token carried in the Authorization
// header. Claims mirror what the middleware reads back: user_id and role.
func SignToken(u domain.User, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
