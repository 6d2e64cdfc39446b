package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bistro-service/internal/config"
	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/events"
	"github.com/spec-kit/bistro-service/internal/gateway"
	"github.com/spec-kit/bistro-service/internal/observability"
	"github.com/spec-kit/bistro-service/internal/repository"
	apperrors "github.com/spec-kit/bistro-service/pkg/util"
)

// ReconcileInput carries a confirmed gateway payment and the cart line-items
// it covers.
type ReconcileInput struct {
	Email       string
	Amount      float64
	Currency    string
	GatewayRef  string
	CartItemIDs []string
}

// ReconcileResult reports the durable payment id and how many cart items
// were actually removed. Removed may be lower than requested when some ids
// were already gone; that is not an error.
type ReconcileResult struct {
	PaymentID    string
	RemovedCount int64
}

// PaymentService records completed payments and purges the cart items they
// cover. It also fronts the external gateway for payment intents.
type PaymentService struct {
	payments   repository.PaymentRepository
	carts      repository.CartRepository
	gateway    gateway.PaymentGateway
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	currency   string
}

// NewPaymentService builds the service.
func NewPaymentService(cfg config.Config, payments repository.PaymentRepository, carts repository.CartRepository, gw gateway.PaymentGateway, dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *PaymentService {
	return &PaymentService{
		payments:   payments,
		carts:      carts,
		gateway:    gw,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		currency:   cfg.Payment.Currency,
	}
}

// CreateIntent forwards the amount to the external gateway and returns the
// client secret for the frontend to confirm with.
func (s *PaymentService) CreateIntent(ctx context.Context, amount float64) (string, error) {
	secret, err := s.gateway.CreateIntent(ctx, amount, s.currency)
	if err != nil {
		return "", apperrors.NewUpstreamGatewayError(err)
	}
	return secret, nil
}

// Reconcile durably records the payment, then removes the covered cart items
// in a single batch delete. The two steps are not atomic: when the delete
// fails the payment stays recorded and the gap is surfaced to operators via
// log and event rather than rolled back. Retrying the delete is safe since
// absent ids are skipped.
func (s *PaymentService) Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error) {
	currency := input.Currency
	if currency == "" {
		currency = s.currency
	}

	payment := &domain.Payment{
		ID:          uuid.NewString(),
		Email:       input.Email,
		Amount:      input.Amount,
		Currency:    currency,
		GatewayRef:  input.GatewayRef,
		CartItemIDs: input.CartItemIDs,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	removed, err := s.carts.DeleteByIDs(ctx, input.CartItemIDs)
	if err != nil {
		s.logger.Error("cart cleanup failed after payment was recorded",
			zap.String("payment_id", payment.ID),
			zap.String("email", payment.Email),
			zap.Strings("cart_item_ids", input.CartItemIDs),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordReconciliationGap()
		}
		s.publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReconciliationIncomplete,
			Email:     payment.Email,
			Timestamp: time.Now(),
			Payload: events.ReconciliationIncompletePayload{
				PaymentID:   payment.ID,
				CartItemIDs: input.CartItemIDs,
				Reason:      err.Error(),
			},
		})
		// The payment succeeded from the client's point of view.
		return &ReconcileResult{PaymentID: payment.ID, RemovedCount: 0}, nil
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPaymentRecorded,
		Email:     payment.Email,
		Timestamp: time.Now(),
		Payload: events.PaymentRecordedPayload{
			PaymentID:    payment.ID,
			Amount:       payment.Amount,
			Currency:     payment.Currency,
			GatewayRef:   payment.GatewayRef,
			RemovedCount: removed,
		},
	})
	return &ReconcileResult{PaymentID: payment.ID, RemovedCount: removed}, nil
}

// History returns the payment records for the email, newest first.
func (s *PaymentService) History(ctx context.Context, email string) ([]domain.Payment, error) {
	return s.payments.ListByEmail(ctx, email)
}

func (s *PaymentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
