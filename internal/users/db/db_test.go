package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-registration/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	assert.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bundb := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.PendingOrder)(nil),
		(*models.Order)(nil),
		(*models.Registration)(nil),
	} {
		_, err := bundb.NewCreateTable().Model(model).Exec(ctx)
		assert.NoError(t, err)
	}

	return &DB{Bun: bundb}
}

func seedUser(t *testing.T, d *DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:        "user-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		CreatedAt: time.Now(),
	}
	_, err := d.Bun.NewInsert().Model(user).Exec(context.Background())
	assert.NoError(t, err)
	return user
}

func TestGetUserByID(t *testing.T) {
	d := setupTestDB(t)
	seedUser(t, d)

	user, err := d.GetUserByID(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = d.GetUserByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingOrderLifecycle(t *testing.T) {
	d := setupTestDB(t)
	seedUser(t, d)
	ctx := context.Background()

	pending := &models.PendingOrder{
		TransactionID: "txn-1",
		OrderID:       4242,
		UserID:        "user-1",
		WorkshopIDs:   []string{"ws-1", "ws-2"},
		Amount:        75000,
		CreatedAt:     time.Now(),
	}
	assert.NoError(t, d.CreatePendingOrder(ctx, pending))

	got, err := d.GetPendingOrderByOrderID(ctx, 4242)
	assert.NoError(t, err)
	assert.Equal(t, "txn-1", got.TransactionID)
	assert.Equal(t, []string{"ws-1", "ws-2"}, got.WorkshopIDs)
	assert.Equal(t, int64(75000), got.Amount)

	assert.NoError(t, d.DeletePendingOrder(ctx, "txn-1"))

	_, err = d.GetPendingOrderByOrderID(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePendingOrder_DuplicateOrderID(t *testing.T) {
	d := setupTestDB(t)
	seedUser(t, d)
	ctx := context.Background()

	first := &models.PendingOrder{TransactionID: "txn-1", OrderID: 4242, UserID: "user-1", Amount: 100}
	assert.NoError(t, d.CreatePendingOrder(ctx, first))

	dup := &models.PendingOrder{TransactionID: "txn-2", OrderID: 4242, UserID: "user-1", Amount: 100}
	assert.Error(t, d.CreatePendingOrder(ctx, dup))
}

func TestIsRegistered(t *testing.T) {
	d := setupTestDB(t)
	seedUser(t, d)
	ctx := context.Background()

	registered, err := d.IsRegistered(ctx, "user-1", "ws-1")
	assert.NoError(t, err)
	assert.False(t, registered)

	_, err = d.Bun.NewInsert().Model(&models.Registration{
		ID:         "reg-1",
		UserID:     "user-1",
		WorkshopID: "ws-1",
		CreatedAt:  time.Now(),
	}).Exec(ctx)
	assert.NoError(t, err)

	registered, err = d.IsRegistered(ctx, "user-1", "ws-1")
	assert.NoError(t, err)
	assert.True(t, registered)
}

func TestCommitOrder(t *testing.T) {
	d := setupTestDB(t)
	user := seedUser(t, d)
	ctx := context.Background()

	pending := &models.PendingOrder{
		TransactionID: "txn-1",
		OrderID:       4242,
		UserID:        user.ID,
		WorkshopIDs:   []string{"ws-1", "ws-2"},
		Amount:        75000,
		CreatedAt:     time.Now(),
	}
	assert.NoError(t, d.CreatePendingOrder(ctx, pending))

	outcome := &models.TransactionOutcome{
		ResCode:        "0",
		Amount:         75000,
		RetrievalRefNo: "ref-1",
		SystemTraceNo:  "trace-1",
	}
	assert.NoError(t, d.CommitOrder(ctx, user, pending, outcome))

	// The pending order is consumed.
	_, err := d.GetPendingOrderByOrderID(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)

	// One completed order row exists with the gateway references.
	var order models.Order
	err = d.Bun.NewSelect().Model(&order).Where("order_id = ?", 4242).Scan(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "ref-1", order.RetrievalRefNo)
	assert.Equal(t, "trace-1", order.SystemTraceNo)
	assert.Equal(t, int64(75000), order.Amount)

	// One registration per workshop.
	regs, err := d.GetRegistrationsByUser(ctx, user.ID)
	assert.NoError(t, err)
	assert.Len(t, regs, 2)
}

func TestCommitFreeRegistration(t *testing.T) {
	d := setupTestDB(t)
	user := seedUser(t, d)
	ctx := context.Background()

	assert.NoError(t, d.CommitFreeRegistration(ctx, user, []string{"ws-1"}))

	regs, err := d.GetRegistrationsByUser(ctx, user.ID)
	assert.NoError(t, err)
	assert.Len(t, regs, 1)
	assert.Equal(t, "ws-1", regs[0].WorkshopID)

	// No order row exists for a free registration.
	count, err := d.Bun.NewSelect().Model((*models.Order)(nil)).Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}
