package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-registration/internal/models"
)

var ErrNotFound = errors.New("workshop not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetByID(ctx context.Context, id string) (*models.Workshop, error) {
	var workshop models.Workshop
	err := d.Bun.NewSelect().
		Model(&workshop).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workshop, nil
}

// ReserveSeat takes one seat with a conditional update so concurrent commits
// cannot oversell. Registration closes in the same statement when the last
// seat goes. Returns false when the workshop is already full.
func (d *DB) ReserveSeat(ctx context.Context, id string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Workshop)(nil)).
		Set("registered = registered + 1").
		Set("is_reg_open = is_reg_open AND (registered + 1 < capacity)").
		Where("id = ?", id).
		Where("registered < capacity").
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
