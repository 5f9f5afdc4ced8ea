package registration

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ms-registration/internal/config"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	usersdb "ms-registration/internal/users/db"
	workshopsdb "ms-registration/internal/workshops/db"
)

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreatePendingOrder(ctx context.Context, pending *models.PendingOrder) error
	GetPendingOrderByOrderID(ctx context.Context, orderID int64) (*models.PendingOrder, error)
	DeletePendingOrder(ctx context.Context, transactionID string) error
	IsRegistered(ctx context.Context, userID, workshopID string) (bool, error)
	CommitOrder(ctx context.Context, user *models.User, pending *models.PendingOrder, outcome *models.TransactionOutcome) error
	CommitFreeRegistration(ctx context.Context, user *models.User, workshopIDs []string) error
}

type WorkshopStore interface {
	GetByID(ctx context.Context, id string) (*models.Workshop, error)
	ReserveSeat(ctx context.Context, id string) (bool, error)
}

type DiscountStore interface {
	GetByCode(ctx context.Context, code string) (*models.Discount, error)
	Redeem(ctx context.Context, code string) (bool, error)
}

type Gateway interface {
	Purchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseResponse, error)
	Verify(ctx context.Context, token, signData string) (*models.TransactionOutcome, error)
}

type Signer interface {
	Sign(fields ...string) (string, error)
}

// VerifyLock serializes reconciliations for one order id across concurrent
// gateway callbacks.
type VerifyLock interface {
	Acquire(ctx context.Context, orderID int64) (bool, error)
	Release(ctx context.Context, orderID int64) error
}

type EventPublisher interface {
	Publish(topic, key string, value []byte) error
}

// Service owns the initiate -> verify -> commit lifecycle of a workshop
// registration payment.
type Service struct {
	Users     UserStore
	Workshops WorkshopStore
	Discounts DiscountStore
	Gateway   Gateway
	Signer    Signer
	Locks     VerifyLock
	Events    EventPublisher
	Audit     *AuditLog
	Cfg       config.GatewayConfig
	Topics    config.TopicConfig
	Logger    *logger.Logger
}

type InitPaymentRequest struct {
	WorkshopIDs []string `json:"workshopIds"`
	Discount    string   `json:"discount,omitempty"`
}

type InitPaymentResult struct {
	// Token is the gateway redirect token. Empty on the free path.
	Token  string
	Amount int64
	// Free is set when the priced amount was zero and the registration was
	// committed synchronously without contacting the gateway.
	Free bool
}

// InitiatePayment validates the requested workshops, prices them, records a
// pending order and submits the signed initiation request to the gateway.
// A zero price bypasses the gateway entirely and commits immediately.
func (s *Service) InitiatePayment(ctx context.Context, userID string, req InitPaymentRequest) (*InitPaymentResult, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if errors.Is(err, usersdb.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	candidates, err := s.eligibleWorkshops(ctx, user, req.WorkshopIDs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoEligibleWorkshops
	}

	candidateIDs := make([]string, len(candidates))
	for i, ws := range candidates {
		candidateIDs[i] = ws.ID
	}

	amount := s.price(ctx, candidates, req.Discount)

	if amount == 0 {
		if err := s.commitFree(ctx, user, candidateIDs); err != nil {
			return nil, fmt.Errorf("commit free registration: %w", err)
		}
		s.Logger.LogPayment("FREE", 0, fmt.Sprintf("user %s registered for %d workshop(s) without payment", user.ID, len(candidateIDs)))
		return &InitPaymentResult{Free: true}, nil
	}

	pending, err := s.newPendingOrder(ctx, user, candidateIDs, amount)
	if err != nil {
		return nil, fmt.Errorf("record pending order: %w", err)
	}

	signData, err := s.Signer.Sign(s.Cfg.TerminalID, strconv.FormatInt(pending.OrderID, 10), strconv.FormatInt(amount, 10))
	if err != nil {
		return nil, fmt.Errorf("sign payment request: %w", err)
	}

	res, err := s.Gateway.Purchase(ctx, models.PurchaseRequest{
		MerchantID: s.Cfg.MerchantID,
		TerminalID: s.Cfg.TerminalID,
		Amount:     amount,
		OrderID:    pending.OrderID,
		ReturnURL:  s.Cfg.ReturnURL,
		SignData:   signData,
		Identity:   user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway purchase: %w", err)
	}

	if res.ResCode != models.GatewaySuccessCode {
		s.Logger.LogPayment("REJECTED", pending.OrderID, fmt.Sprintf("ResCode=%s %s", res.ResCode, res.Description))
		// The gateway refused before a transaction existed, so the pending
		// order will never be reconciled.
		if err := s.Users.DeletePendingOrder(ctx, pending.TransactionID); err != nil {
			s.Logger.Error("PAYMENT", fmt.Sprintf("failed to drop rejected pending order %s: %v", pending.TransactionID, err))
		}
		return nil, &GatewayRejectionError{ResCode: res.ResCode, Description: res.Description}
	}

	s.Logger.LogPayment("INITIATED", pending.OrderID, fmt.Sprintf("user %s, amount %d", user.ID, amount))
	return &InitPaymentResult{Token: res.Token, Amount: amount}, nil
}

// eligibleWorkshops builds the candidate set. An unknown workshop id aborts
// the request; a closed, full, or already-registered workshop is skipped
// with a log line.
func (s *Service) eligibleWorkshops(ctx context.Context, user *models.User, workshopIDs []string) ([]*models.Workshop, error) {
	var candidates []*models.Workshop
	for _, id := range workshopIDs {
		ws, err := s.Workshops.GetByID(ctx, id)
		if errors.Is(err, workshopsdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkshopNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("load workshop %s: %w", id, err)
		}

		if !ws.IsRegOpen {
			s.Logger.Warn("PAYMENT", fmt.Sprintf("workshop %s registration is closed, skipping", id))
			continue
		}
		if !ws.HasCapacity() {
			s.Logger.Warn("PAYMENT", fmt.Sprintf("workshop %s is full, skipping", id))
			continue
		}

		registered, err := s.Users.IsRegistered(ctx, user.ID, id)
		if err != nil {
			return nil, fmt.Errorf("check registration for workshop %s: %w", id, err)
		}
		if registered {
			s.Logger.Warn("PAYMENT", fmt.Sprintf("user %s already registered for workshop %s, skipping", user.ID, id))
			continue
		}

		candidates = append(candidates, ws)
	}
	return candidates, nil
}
