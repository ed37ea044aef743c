package v1

import "github.com/Behyna/subscription-engine/internal/service"

type ServiceAccessResponse struct {
	Service      string                      `json:"service"`
	Subscription *service.SubscriptionStatus `json:"subscription,omitempty"`
}

type PollerCancelResponse struct {
	Reference string `json:"reference"`
	Cancelled bool   `json:"cancelled"`
}

type ActivePollersResponse struct {
	References []string `json:"references"`
	Count      int      `json:"count"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
