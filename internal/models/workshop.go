package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Workshop struct {
	bun.BaseModel `bun:"table:workshops"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	Price       int64     `bun:"price,notnull" json:"price"`
	Capacity    int       `bun:"capacity,notnull" json:"capacity"`
	Registered  int       `bun:"registered,notnull,default:0" json:"registered"`
	IsRegOpen   bool      `bun:"is_reg_open,notnull,default:true" json:"is_reg_open"`
	CreatedAt   time.Time `bun:"created_at" json:"created_at"`
}

// HasCapacity reports whether the workshop can accept another registration.
func (w *Workshop) HasCapacity() bool {
	return w.Registered < w.Capacity
}
