package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-registration/internal/models"
)

var ErrNotFound = errors.New("not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePendingOrder records an unconfirmed transaction against a user.
func (d *DB) CreatePendingOrder(ctx context.Context, pending *models.PendingOrder) error {
	_, err := d.Bun.NewInsert().Model(pending).Exec(ctx)
	return err
}

// GetPendingOrderByOrderID resolves the gateway-facing order id back to the
// pending transaction it belongs to.
func (d *DB) GetPendingOrderByOrderID(ctx context.Context, orderID int64) (*models.PendingOrder, error) {
	var pending models.PendingOrder
	err := d.Bun.NewSelect().
		Model(&pending).
		Where("order_id = ?", orderID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (d *DB) DeletePendingOrder(ctx context.Context, transactionID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.PendingOrder)(nil)).
		Where("transaction_id = ?", transactionID).
		Exec(ctx)
	return err
}

// IsRegistered reports whether the user already holds a committed
// registration for the workshop.
func (d *DB) IsRegistered(ctx context.Context, userID, workshopID string) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Registration)(nil)).
		Where("user_id = ?", userID).
		Where("workshop_id = ?", workshopID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) GetRegistrationsByUser(ctx context.Context, userID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := d.Bun.NewSelect().
		Model(&regs).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return regs, nil
}

// CommitOrder applies a verified transaction in one database transaction:
// the completed order is appended, one registration per workshop is added,
// and the pending order is removed. If any step fails the whole commit rolls
// back and the workshop records are never touched.
func (d *DB) CommitOrder(ctx context.Context, user *models.User, pending *models.PendingOrder, outcome *models.TransactionOutcome) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		order := &models.Order{
			ID:             uuid.NewString(),
			UserID:         user.ID,
			OrderID:        pending.OrderID,
			WorkshopIDs:    pending.WorkshopIDs,
			Amount:         pending.Amount,
			ResCode:        outcome.ResCode,
			RetrievalRefNo: outcome.RetrievalRefNo,
			SystemTraceNo:  outcome.SystemTraceNo,
			CreatedAt:      time.Now(),
		}
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if err := insertRegistrations(ctx, tx, user.ID, pending.WorkshopIDs); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*models.PendingOrder)(nil)).
			Where("transaction_id = ?", pending.TransactionID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete pending order: %w", err)
		}
		return nil
	})
}

// CommitFreeRegistration records registrations for a zero-price order. No
// gateway transaction exists, so no order row and no pending order are
// involved.
func (d *DB) CommitFreeRegistration(ctx context.Context, user *models.User, workshopIDs []string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return insertRegistrations(ctx, tx, user.ID, workshopIDs)
	})
}

func insertRegistrations(ctx context.Context, tx bun.Tx, userID string, workshopIDs []string) error {
	for _, workshopID := range workshopIDs {
		reg := &models.Registration{
			ID:         uuid.NewString(),
			UserID:     userID,
			WorkshopID: workshopID,
			CreatedAt:  time.Now(),
		}
		if _, err := tx.NewInsert().Model(reg).Exec(ctx); err != nil {
			return fmt.Errorf("insert registration for workshop %s: %w", workshopID, err)
		}
	}
	return nil
}
