package paymentgateway

import "strings"

const (
	EventStatusPending    = "pending"
	EventStatusSuccessful = "successful"
	EventStatusFailed     = "failed"
)

type AccessToken struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Expires int64  `json:"expires"`
}

type CashInResponse struct {
	Reference string `json:"ref"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Provider  string `json:"provider"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
}

type EventsResponse struct {
	Transactions []Event `json:"transactions"`
	Total        int     `json:"total"`
}

type Event struct {
	EventID   string    `json:"event_id"`
	EventKind string    `json:"event_kind"`
	CreatedAt string    `json:"created_at"`
	Data      EventData `json:"data"`
}

type EventData struct {
	Reference   string `json:"ref"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Provider    string `json:"provider"`
	Amount      int64  `json:"amount"`
	Client      string `json:"client"`
	ProcessedAt string `json:"processed_at"`
}

func (e Event) IsSuccessful() bool {
	return strings.EqualFold(e.Data.Status, EventStatusSuccessful)
}

func (e Event) IsFailed() bool {
	return strings.EqualFold(e.Data.Status, EventStatusFailed)
}

func (e Event) IsTerminal() bool {
	return e.IsSuccessful() || e.IsFailed()
}
