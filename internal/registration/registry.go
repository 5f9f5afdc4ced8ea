package registration

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"ms-registration/internal/models"
)

// newPendingOrder records the transaction before the gateway is contacted.
// The gateway-facing order id is a random positive integer below the
// configured bound, backed by a unique index, so a collision surfaces as an
// insert error instead of a silent mislookup.
func (s *Service) newPendingOrder(ctx context.Context, user *models.User, workshopIDs []string, amount int64) (*models.PendingOrder, error) {
	orderID, err := randomOrderID(s.Cfg.OrderIDBound)
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}

	pending := &models.PendingOrder{
		TransactionID: uuid.NewString(),
		OrderID:       orderID,
		UserID:        user.ID,
		WorkshopIDs:   workshopIDs,
		Amount:        amount,
		CreatedAt:     time.Now(),
	}

	if err := s.Users.CreatePendingOrder(ctx, pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func randomOrderID(bound int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(bound))
	if err != nil {
		return 0, err
	}
	return n.Int64() + 1, nil
}
