package paymentgateway

type AuthorizeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type CashInRequest struct {
	Amount int64  `json:"amount"`
	Number string `json:"number"`
}

type EventsQuery struct {
	Reference string
	Phone     string
}
