package constants

const (
	PaymentInitiated     = "Payment initiated, awaiting confirmation"
	TransactionFound     = "Transaction retrieved"
	TransactionsListed   = "Transactions retrieved"
	TransactionUpdated   = "Transaction updated"
	TransactionDeleted   = "Transaction deleted"
	SubscriptionChecked  = "Subscription status retrieved"
	ServiceAccessGranted = "Service access granted"
	TotalsComputed       = "Transaction totals retrieved"
	PollerCancelled      = "Confirmation poller cancelled"
	PollersListed        = "Active confirmation pollers"
	DecayCompleted       = "Entitlement decay completed"
	Healthy              = "healthy"
)
