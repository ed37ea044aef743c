package middleware

import (
	"errors"
	"fmt"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/gofiber/fiber/v2"
)

const SubscriptionKey = "subscription"

var ErrNoSubscription = errors.New("no active subscription")

// ServiceResolver picks the gated service for a request.
type ServiceResolver func(c *fiber.Ctx) (model.Service, error)

func ServiceFromParam(name string) ServiceResolver {
	return func(c *fiber.Ctx) (model.Service, error) {
		svc := model.Service(c.Params(name))
		if !svc.Valid() {
			return "", service.NewServiceError(constants.ErrCodeValidationFailed,
				fmt.Errorf("%w: %q", service.ErrInvalidService, svc))
		}
		return svc, nil
	}
}

// RequireSubscription lets a request through only when the caller holds an active
// entitlement for the resolved service. Admins bypass the check.
func RequireSubscription(subscriptions service.SubscriptionService, resolve ServiceResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := resolve(c)
		if err != nil {
			return err
		}

		if IsAdmin(c) {
			return c.Next()
		}

		status, err := subscriptions.CheckSubscriptionStatus(c.UserContext(), UserID(c), svc)
		if err != nil {
			return err
		}

		if !status.IsActive {
			return service.NewServiceError(constants.ErrCodeSubscriptionRequired,
				fmt.Errorf("%w: %s", ErrNoSubscription, svc))
		}

		c.Locals(SubscriptionKey, status)

		return c.Next()
	}
}

func Subscription(c *fiber.Ctx) (service.SubscriptionStatus, bool) {
	status, ok := c.Locals(SubscriptionKey).(service.SubscriptionStatus)
	return status, ok
}
