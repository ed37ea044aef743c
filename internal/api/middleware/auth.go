package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"

	bearerPrefix = "Bearer "
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// JWT authenticates requests carrying an HMAC signed bearer token whose "sub"
// claim is the user id and whose optional "role" claim is the user's role.
func JWT(secret string, logger *zap.Logger) fiber.Handler {
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return service.NewServiceError(constants.ErrCodeUnauthorized, ErrMissingToken)
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			logger.Debug("Rejected token", zap.Error(err))
			return service.NewServiceError(constants.ErrCodeUnauthorized, ErrInvalidToken)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return service.NewServiceError(constants.ErrCodeUnauthorized, ErrInvalidToken)
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			return service.NewServiceError(constants.ErrCodeUnauthorized, ErrInvalidToken)
		}

		role, _ := claims["role"].(string)
		if role == "" {
			role = model.RoleUser
		}

		c.Locals(UserIDKey, userID)
		c.Locals(RoleKey, role)

		return c.Next()
	}
}

// RequireRole rejects callers whose token role differs from role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != role {
			return service.NewServiceError(constants.ErrCodeForbidden, fmt.Errorf("role %s required", role))
		}
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(RoleKey).(string)
	return role
}

func IsAdmin(c *fiber.Ctx) bool {
	return Role(c) == model.RoleAdmin
}
