package middleware

import (
	"github.com/Behyna/subscription-engine/internal/api/contract"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const TrackIDHeader = "X-Track-ID"

// TrackID propagates the caller's X-Track-ID or assigns a fresh one.
func TrackID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(TrackIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(contract.TrackIDKey, id)
		c.Set(TrackIDHeader, id)

		return c.Next()
	}
}
