package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/petofy/petcare-payments/internal/config"
	"github.com/petofy/petcare-payments/internal/domain"
	"github.com/petofy/petcare-payments/internal/gateway"
)

// Test-mode identifiers let integration environments exercise the full
// callback path without live gateway credentials.
const (
	TestPaymentID = "pay_test"
	TestSignature = "sig_test"
)

// A stored amount is only replaced by a gateway-fetched one when they
// agree within this tolerance (major units) or the stored value is zero.
const amountTolerance = 0.01

// CallbackReconciler converges the local payment record with the
// gateway's authoritative outcome for an order. Callbacks may arrive
// multiple times, out of order, without a signature, or for orders with
// no local row yet; reconciliation is idempotent rather than sequenced.
type CallbackReconciler struct {
	payments PaymentStore
	gateway  gateway.Client
	cfg      config.GatewayConfig
	logger   *slog.Logger
}

func NewCallbackReconciler(
	payments PaymentStore,
	gw gateway.Client,
	cfg config.GatewayConfig,
	logger *slog.Logger,
) *CallbackReconciler {
	return &CallbackReconciler{
		payments: payments,
		gateway:  gw,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *CallbackReconciler) Reconcile(ctx context.Context, cmd ReconcileCommand) (*ReconcileResult, error) {
	if cmd.OrderID == "" {
		return nil, domain.NewValidationError("order id is required")
	}

	testMode := cmd.PaymentID == TestPaymentID || cmd.Signature == TestSignature
	verified := testMode

	// Signature mismatch is terminal: reject without touching any record.
	if !testMode && cmd.Signature != "" && cmd.PaymentID != "" {
		if !gateway.VerifySignature(cmd.OrderID, cmd.PaymentID, cmd.Signature, s.cfg.KeySecret) {
			return nil, domain.NewInvalidSignatureError()
		}
		verified = true
	}

	existing, err := s.payments.FindByOrderID(ctx, cmd.OrderID)
	if err != nil {
		if !domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		existing = nil
	}

	paymentID := cmd.PaymentID
	var gwPayment *gateway.Payment
	success := verified

	demoRecord := existing != nil && existing.DemoMode

	switch {
	case testMode || demoRecord:
		// Demo orders have nothing to look up remotely; the callback
		// itself is the outcome.
		success = true

	case paymentID == "":
		gwPayment, err = s.resolvePayment(ctx, cmd.OrderID)
		if err != nil {
			return nil, err
		}
		if gwPayment == nil {
			if existing == nil {
				return nil, domain.NewNotFoundError("payment for order", cmd.OrderID)
			}
			// Nothing remote to converge with; report the stored state.
			return resultFromRecord(existing), nil
		}
		paymentID = gwPayment.ID
		success = gwPayment.Settled()

	default:
		// A payment id without a verifiable signature: ask the gateway
		// what actually happened. When the signature already verified,
		// the fetch only enriches amount and method, so a failure there
		// is tolerable.
		gwPayment, err = s.fetchPayment(ctx, cmd.OrderID, paymentID, verified, cmd.Amount != nil, existing != nil)
		if err != nil {
			return nil, err
		}
		if gwPayment != nil {
			success = gwPayment.Settled()
		}
		if verified {
			success = true
		}
	}

	amount := s.resolveAmount(cmd.Amount, gwPayment, existing)
	method := s.resolveMethod(cmd.Method, gwPayment)

	record, err := s.apply(existing, cmd, gwPayment, paymentID, amount, method, success)
	if err != nil {
		return nil, err
	}

	if err := s.payments.Upsert(ctx, record); err != nil {
		return nil, err
	}

	return resultFromRecord(record), nil
}

// resolvePayment lists the order's payments and picks the best candidate:
// the first settled one, else the most recent attempt.
func (s *CallbackReconciler) resolvePayment(ctx context.Context, orderID string) (*gateway.Payment, error) {
	payments, err := s.gateway.ListOrderPayments(ctx, orderID)
	if err != nil {
		if gwErr, ok := gateway.IsGatewayError(err); ok && gwErr.IsNotFound() {
			return nil, nil
		}
		return nil, domain.NewGatewayUnavailableError(err)
	}

	if len(payments) == 0 {
		return nil, nil
	}

	for i := range payments {
		if payments[i].Settled() {
			return &payments[i], nil
		}
	}
	return &payments[len(payments)-1], nil
}

// fetchPayment reads one payment from the gateway. The read is mandatory
// when it is the only way to establish the outcome or the amount; it is
// best-effort enrichment otherwise. A payment that belongs to a different
// order never counts as evidence for this one: anyone can post a captured
// payment id from their own order against a victim's order id.
func (s *CallbackReconciler) fetchPayment(ctx context.Context, orderID, paymentID string, verified, haveAmount, haveRecord bool) (*gateway.Payment, error) {
	p, err := s.gateway.FetchPayment(ctx, paymentID)
	if err == nil {
		if p != nil && p.OrderID != "" && p.OrderID != orderID {
			if verified {
				// The signature already bound the pair, so a mismatch here
				// is gateway inconsistency; skip the enrichment.
				s.logger.Warn("fetched payment belongs to a different order, ignoring",
					"order_id", orderID,
					"payment_id", paymentID,
					"payment_order_id", p.OrderID,
				)
				return nil, nil
			}
			return nil, domain.NewNotFoundError("payment for order", orderID)
		}
		return p, nil
	}

	if gwErr, ok := gateway.IsGatewayError(err); ok && gwErr.IsNotFound() {
		if verified {
			return nil, nil
		}
		return nil, domain.NewNotFoundError("gateway payment", paymentID)
	}

	required := !verified || (!haveAmount && !haveRecord)
	if required {
		return nil, domain.NewGatewayUnavailableError(err)
	}

	s.logger.Warn("gateway fetch failed, proceeding with local data",
		"payment_id", paymentID,
		"error", err,
	)
	return nil, nil
}

// resolveAmount applies the priority order: explicit callback amount
// (already major units), then the gateway's minor-unit amount divided by
// the factor, then whatever the stored record holds. A positive stored
// amount is protected against a disagreeing upstream read.
func (s *CallbackReconciler) resolveAmount(explicit *float64, gwPayment *gateway.Payment, existing *domain.PaymentRecord) float64 {
	if explicit != nil && *explicit > 0 {
		return *explicit
	}

	if gwPayment != nil && gwPayment.Amount > 0 {
		fetched := float64(gwPayment.Amount) / float64(s.cfg.MinorUnitFactor)
		if existing != nil && existing.Amount > 0 && math.Abs(existing.Amount-fetched) > amountTolerance {
			s.logger.Warn("gateway amount disagrees with stored amount, keeping stored value",
				"order_id", existing.GatewayOrderID,
				"stored", existing.Amount,
				"fetched", fetched,
			)
			return existing.Amount
		}
		return fetched
	}

	if existing != nil {
		return existing.Amount
	}
	return 0
}

func (s *CallbackReconciler) resolveMethod(fields domain.MethodFields, gwPayment *gateway.Payment) domain.PaymentMethod {
	if gwPayment != nil && gwPayment.Method != "" {
		if m := domain.ParseMethod(gwPayment.Method); m != domain.MethodUnknown {
			return m
		}
	}
	return domain.ResolveMethod(fields)
}

// apply folds the resolved outcome onto the record, creating one for
// payment-link flows that never issued a local order row.
func (s *CallbackReconciler) apply(
	existing *domain.PaymentRecord,
	cmd ReconcileCommand,
	gwPayment *gateway.Payment,
	paymentID string,
	amount float64,
	method domain.PaymentMethod,
	success bool,
) (*domain.PaymentRecord, error) {
	now := time.Now().UTC()

	record := existing
	if record == nil {
		record = &domain.PaymentRecord{
			ID:             uuid.New(),
			GatewayOrderID: cmd.OrderID,
			Amount:         amount,
			Currency:       "INR",
			Status:         domain.StatusPending,
			Method:         domain.MethodUnknown,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if gwPayment != nil {
			record.Currency = gwPayment.Currency
			if record.CustomerEmail == "" {
				record.CustomerEmail = gwPayment.Email
			}
			if record.CustomerPhone == "" {
				record.CustomerPhone = gwPayment.Contact
			}
		}
	}

	if !cmd.Customer.IsEmpty() {
		if record.CustomerEmail == "" {
			record.CustomerEmail = cmd.Customer.Email
		}
		if record.CustomerPhone == "" {
			record.CustomerPhone = cmd.Customer.Phone
		}
	}

	if success {
		err := record.Capture(paymentID, cmd.Signature, method, amount, now)
		if err != nil {
			if domain.IsCode(err, domain.ErrCodeInvalidTransition) {
				// Already captured: idempotent no-op.
				return record, nil
			}
			return nil, err
		}
		return record, nil
	}

	if err := record.Fail(paymentID, now); err != nil {
		if domain.IsCode(err, domain.ErrCodeInvalidTransition) {
			// A late failure callback must not downgrade a captured
			// record; log and keep the stored state.
			s.logger.Warn("ignoring failure callback for captured order",
				"order_id", record.GatewayOrderID,
				"payment_id", paymentID,
			)
			return record, nil
		}
		return nil, err
	}
	return record, nil
}

func resultFromRecord(record *domain.PaymentRecord) *ReconcileResult {
	outcome := OutcomeFailure
	if record.Status == domain.StatusCaptured {
		outcome = OutcomeSuccess
	}

	paymentID := ""
	if record.GatewayPaymentID != nil {
		paymentID = *record.GatewayPaymentID
	}

	return &ReconcileResult{
		Outcome:   outcome,
		OrderID:   record.GatewayOrderID,
		PaymentID: paymentID,
		Amount:    record.Amount,
		Record:    record,
	}
}
