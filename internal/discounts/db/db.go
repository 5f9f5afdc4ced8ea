package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-registration/internal/models"
)

var ErrNotFound = errors.New("discount not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := d.Bun.NewSelect().
		Model(&discount).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// Redeem consumes one use of a finite code. The decrement is a single
// conditional update, so two concurrent redemptions of a code with one use
// left cannot both succeed and the count never goes negative. Returns false
// when the code is exhausted.
func (d *DB) Redeem(ctx context.Context, code string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Discount)(nil)).
		Set("count = count - 1").
		Where("code = ?", code).
		Where("count > 0").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
