package serverutils

import (
	"strings"
	"time"

	"cortex-ai-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

// JwtMiddleware authenticates "Authorization: Bearer <token>" and stores the
// user id from the user_id claim in ctx.Locals.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return apperror.Unauthenticated("missing token")
		}

		userId, err := ParseUserToken(secret, authHeader[7:])
		if err != nil {
			return err
		}

		ctx.Locals(userIdLocal, userId)
		return ctx.Next()
	}
}

// ParseUserToken validates an HS256 token and returns its user_id claim.
func ParseUserToken(secret, tokenStr string) (uuid.UUID, error) {
	if tokenStr == "" {
		return uuid.Nil, apperror.Unauthenticated("missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, apperror.Unauthenticated("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperror.Unauthenticated("invalid claims")
	}

	raw, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(raw)
	if err != nil || userId == uuid.Nil {
		return uuid.Nil, apperror.Unauthenticated("invalid claims")
	}
	return userId, nil
}

// SignUserToken issues a token accepted by JwtMiddleware.
func SignUserToken(secret string, userId uuid.UUID, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"iat":     time.Now().Unix(),
	}
	if ttl != 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// UserID returns the authenticated user stored by JwtMiddleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, ok := ctx.Locals(userIdLocal).(uuid.UUID)
	if !ok || userId == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthenticated
	}
	return userId, nil
}
