package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-registration/internal/models"
	usersdb "ms-registration/internal/users/db"
)

type Status string

const (
	StatusGood Status = "GOOD"
	StatusBad  Status = "BAD"
)

// Stage values are surfaced on the payment result page.
const (
	StagePaymentVerified = "Payment verified"
	StageGatewayRejected = "Gateway rejected"
	StageOrderNotFound   = "Order not found"
	StagePaymentFailed   = "Payment failed"
	StageTimeout         = "Time out"
	StageVerifyError     = "Verification error"
	StageCommitFailed    = "Commit failed"
	StageInProgress      = "Verification in progress"
)

// VerifyResult is the terminal outcome of one reconciliation, rendered as a
// redirect to the result page.
type VerifyResult struct {
	Status  Status
	Stage   string
	Outcome *models.TransactionOutcome
}

// ReconcilePayment turns a gateway callback into a committed or abandoned
// transaction. It polls the gateway on a fixed cadence until the outcome is
// definitive, the verify window elapses, or a call fails; exactly one
// terminal state is reached and the commit runs at most once.
func (s *Service) ReconcilePayment(ctx context.Context, cb models.PaymentCallback) VerifyResult {
	if cb.ResCode != models.GatewaySuccessCode {
		s.Logger.LogPayment("CALLBACK_REJECTED", cb.OrderID, fmt.Sprintf("ResCode=%s", cb.ResCode))
		s.publishFailed(cb.OrderID, StageGatewayRejected)
		return VerifyResult{Status: StatusBad, Stage: StageGatewayRejected}
	}

	if s.Locks != nil {
		acquired, err := s.Locks.Acquire(ctx, cb.OrderID)
		if err != nil {
			s.Logger.Error("VERIFY", fmt.Sprintf("order %d: lock error: %v", cb.OrderID, err))
			return VerifyResult{Status: StatusBad, Stage: StageVerifyError}
		}
		if !acquired {
			s.Logger.Warn("VERIFY", fmt.Sprintf("order %d: reconciliation already running", cb.OrderID))
			return VerifyResult{Status: StatusBad, Stage: StageInProgress}
		}
		defer func() {
			if err := s.Locks.Release(context.Background(), cb.OrderID); err != nil {
				s.Logger.Error("VERIFY", fmt.Sprintf("order %d: lock release failed: %v", cb.OrderID, err))
			}
		}()
	}

	pending, err := s.Users.GetPendingOrderByOrderID(ctx, cb.OrderID)
	if errors.Is(err, usersdb.ErrNotFound) {
		s.Logger.Warn("VERIFY", fmt.Sprintf("order %d: no pending order", cb.OrderID))
		return VerifyResult{Status: StatusBad, Stage: StageOrderNotFound}
	}
	if err != nil {
		s.Logger.Error("VERIFY", fmt.Sprintf("order %d: pending order lookup failed: %v", cb.OrderID, err))
		return VerifyResult{Status: StatusBad, Stage: StageVerifyError}
	}

	signData, err := s.Signer.Sign(cb.Token)
	if err != nil {
		s.Logger.Error("VERIFY", fmt.Sprintf("order %d: signing failed: %v", cb.OrderID, err))
		return VerifyResult{Status: StatusBad, Stage: StageVerifyError}
	}

	start := time.Now()
	ticker := time.NewTicker(s.Cfg.PollInterval)
	defer ticker.Stop()

	for {
		outcome, err := s.Gateway.Verify(ctx, cb.Token, signData)
		switch {
		case err != nil:
			s.Logger.Error("VERIFY", fmt.Sprintf("order %d: verify call failed: %v", cb.OrderID, err))
			return VerifyResult{Status: StatusBad, Stage: StageVerifyError}

		case outcome.Succeeded():
			if err := s.commit(ctx, pending, outcome); err != nil {
				s.Logger.Error("VERIFY", fmt.Sprintf("order %d: commit failed: %v", cb.OrderID, err))
				return VerifyResult{Status: StatusBad, Stage: StageCommitFailed}
			}
			s.Logger.LogPayment("VERIFIED", cb.OrderID, fmt.Sprintf("refNo=%s traceNo=%s", outcome.RetrievalRefNo, outcome.SystemTraceNo))
			return VerifyResult{Status: StatusGood, Stage: StagePaymentVerified, Outcome: outcome}

		case outcome != nil:
			s.Logger.LogPayment("FAILED", cb.OrderID, fmt.Sprintf("ResCode=%s", outcome.ResCode))
			s.publishFailed(cb.OrderID, StagePaymentFailed)
			return VerifyResult{Status: StatusBad, Stage: StagePaymentFailed, Outcome: outcome}
		}

		// Outcome absent: still unresolved. Give up once the verify window
		// has fully elapsed.
		if time.Since(start) > s.Cfg.VerifyTimeout {
			s.Logger.LogPayment("TIMEOUT", cb.OrderID, fmt.Sprintf("no outcome after %s", s.Cfg.VerifyTimeout))
			s.publishFailed(cb.OrderID, StageTimeout)
			return VerifyResult{Status: StatusBad, Stage: StageTimeout}
		}

		select {
		case <-ctx.Done():
			s.Logger.Warn("VERIFY", fmt.Sprintf("order %d: reconciliation cancelled: %v", cb.OrderID, ctx.Err()))
			return VerifyResult{Status: StatusBad, Stage: StageVerifyError}
		case <-ticker.C:
		}
	}
}

func (s *Service) publishFailed(orderID int64, reason string) {
	if s.Events == nil {
		return
	}
	payload := []byte(fmt.Sprintf(`{"order_id":%d,"reason":%q}`, orderID, reason))
	if err := s.Events.Publish(s.Topics.PaymentFailed, fmt.Sprintf("%d", orderID), payload); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish payment.failed for order %d: %v", orderID, err))
	}
}
