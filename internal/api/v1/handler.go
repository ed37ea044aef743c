package v1

import (
	"context"
	"errors"
	"time"

	"github.com/Behyna/subscription-engine/internal/api/contract"
	"github.com/Behyna/subscription-engine/internal/api/middleware"
	"github.com/Behyna/subscription-engine/internal/api/validator"
	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var ErrNotOwner = errors.New("transaction belongs to another user")

// PollerController is the administrative view of the confirmation poller registry.
type PollerController interface {
	Cancel(reference string) bool
	Active() []string
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Params struct {
	fx.In

	Logger        *zap.Logger
	Payments      service.PaymentService
	Transactions  service.TransactionService
	Confirmation  service.ConfirmationService
	Subscriptions service.SubscriptionService
	Decay         service.DecayService
	Pollers       PollerController
	Health        HealthChecker
	XValidator    validator.IXValidator
}

type Handler struct {
	logger        *zap.Logger
	payments      service.PaymentService
	transactions  service.TransactionService
	confirmation  service.ConfirmationService
	subscriptions service.SubscriptionService
	decay         service.DecayService
	pollers       PollerController
	health        HealthChecker
	XValidator    validator.IXValidator
}

func NewHandler(p Params) *Handler {
	return &Handler{
		logger:        p.Logger,
		payments:      p.Payments,
		transactions:  p.Transactions,
		confirmation:  p.Confirmation,
		subscriptions: p.Subscriptions,
		decay:         p.Decay,
		pollers:       p.Pollers,
		health:        p.Health,
		XValidator:    p.XValidator,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := h.health.HealthCheck(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{Status: "unhealthy", Database: err.Error()})
	}

	return c.JSON(HealthResponse{Status: constants.Healthy, Database: constants.Healthy})
}

func (h *Handler) InitiatePayment(c *fiber.Ctx) error {
	start := time.Now()

	var handlerRequest InitiatePaymentRequest
	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.TrackID = contract.TrackID(c)
		return c.JSON(responseError)
	}

	cmd := service.InitiatePaymentCommand{
		UserID:      middleware.UserID(c),
		Amount:      handlerRequest.Amount,
		PayerNumber: handlerRequest.PhoneNumber,
		Duration:    handlerRequest.Duration,
		Service:     model.Service(handlerRequest.Service),
	}

	res, err := h.payments.Initiate(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.logger.Info("Payment initiated",
		zap.String("reference", res.Transaction.Reference),
		zap.String("user_id", cmd.UserID),
		zap.Duration("duration", time.Since(start)),
	)

	return c.Status(fiber.StatusCreated).JSON(contract.Success(contract.TrackID(c), constants.PaymentInitiated, res))
}

func (h *Handler) GetPayment(c *fiber.Ctx) error {
	transaction, err := h.transactions.Get(c.UserContext(), c.Params("reference"))
	if err != nil {
		return err
	}

	if !middleware.IsAdmin(c) && transaction.UserID != middleware.UserID(c) {
		return service.NewServiceError(constants.ErrCodeForbidden, ErrNotOwner)
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.TransactionFound, service.NewTransaction(transaction)))
}

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	res, err := h.transactions.ListByUser(c.UserContext(), service.ListTransactionsQuery{
		UserID: middleware.UserID(c),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.TransactionsListed, res))
}

func (h *Handler) GetSubscription(c *fiber.Ctx) error {
	status, err := h.subscriptions.CheckSubscriptionStatus(c.UserContext(), middleware.UserID(c),
		model.Service(c.Params("service")))
	if err != nil {
		return err
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.SubscriptionChecked, status))
}

// ServiceAccess is mounted behind the subscription gate and only reports what the gate decided.
func (h *Handler) ServiceAccess(c *fiber.Ctx) error {
	res := ServiceAccessResponse{Service: c.Params("service")}
	if status, ok := middleware.Subscription(c); ok {
		res.Subscription = &status
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.ServiceAccessGranted, res))
}

func (h *Handler) Totals(c *fiber.Ctx) error {
	totals, err := h.transactions.AggregateTotals(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.TotalsComputed, totals))
}

func (h *Handler) UpdateTransaction(c *fiber.Ctx) error {
	var handlerRequest UpdateTransactionRequest
	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.TrackID = contract.TrackID(c)
		return c.JSON(responseError)
	}

	cmd := service.UpdateFieldsCommand{
		Reference:     c.Params("reference"),
		Amount:        handlerRequest.Amount,
		PayerNumber:   handlerRequest.PayerNumber,
		Duration:      handlerRequest.Duration,
		RemainingTime: handlerRequest.RemainingTime,
	}
	if handlerRequest.Method != nil {
		method := model.PaymentMethod(*handlerRequest.Method)
		cmd.Method = &method
	}
	if handlerRequest.Service != nil {
		svc := model.Service(*handlerRequest.Service)
		cmd.Service = &svc
	}

	transaction, err := h.transactions.UpdateFields(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.TransactionUpdated, service.NewTransaction(transaction)))
}

func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var handlerRequest UpdateStatusRequest
	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.TrackID = contract.TrackID(c)
		return c.JSON(responseError)
	}

	reference := c.Params("reference")
	transaction, err := h.confirmation.Settle(c.UserContext(), service.UpdateStatusCommand{
		Reference:     reference,
		Status:        model.TransactionStatus(handlerRequest.Status),
		RemainingTime: handlerRequest.RemainingTime,
		Reason:        handlerRequest.Reason,
	})
	if err != nil {
		return err
	}

	if h.pollers.Cancel(reference) {
		h.logger.Info("Stopped poller for manually settled transaction", zap.String("reference", reference))
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.TransactionUpdated, service.NewTransaction(transaction)))
}

func (h *Handler) DeleteTransaction(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if err := h.transactions.Delete(c.UserContext(), reference); err != nil {
		return err
	}

	h.pollers.Cancel(reference)

	return c.JSON(contract.Success(contract.TrackID(c), constants.TransactionDeleted, fiber.Map{"reference": reference}))
}

func (h *Handler) ListPollers(c *fiber.Ctx) error {
	refs := h.pollers.Active()
	if refs == nil {
		refs = []string{}
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.PollersListed, ActivePollersResponse{
		References: refs,
		Count:      len(refs),
	}))
}

func (h *Handler) CancelPoller(c *fiber.Ctx) error {
	reference := c.Params("reference")
	cancelled := h.pollers.Cancel(reference)

	h.logger.Info("Poller cancel requested",
		zap.String("reference", reference),
		zap.Bool("cancelled", cancelled),
	)

	return c.JSON(contract.Success(contract.TrackID(c), constants.PollerCancelled, PollerCancelResponse{
		Reference: reference,
		Cancelled: cancelled,
	}))
}

func (h *Handler) RunDecay(c *fiber.Ctx) error {
	res, err := h.decay.Run(c.UserContext(), time.Now())
	if err != nil {
		return err
	}

	return c.JSON(contract.Success(contract.TrackID(c), constants.DecayCompleted, res))
}
