package v1

type InitiatePaymentRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	PhoneNumber string `json:"phone_number" validate:"required,msisdn"`
	Duration    int    `json:"duration" validate:"gte=0,lte=120"`
	Service     string `json:"service" validate:"required,service"`
}

type UpdateTransactionRequest struct {
	Amount        *int64  `json:"amount" validate:"omitempty,gt=0"`
	PayerNumber   *string `json:"payer_number" validate:"omitempty,msisdn"`
	Method        *string `json:"method" validate:"omitempty,oneof=MTN AIRTEL UNKNOWN"`
	Duration      *int    `json:"duration" validate:"omitempty,gte=0,lte=120"`
	Service       *string `json:"service" validate:"omitempty,service"`
	RemainingTime *int    `json:"remaining_time" validate:"omitempty,gte=0"`
}

type UpdateStatusRequest struct {
	Status        string  `json:"status" validate:"required,terminal_status"`
	RemainingTime *int    `json:"remaining_time" validate:"omitempty,gte=0"`
	Reason        *string `json:"reason" validate:"omitempty,max=255"`
}
