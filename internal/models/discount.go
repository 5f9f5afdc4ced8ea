package models

import "github.com/uptrace/bun"

// Discount is a percentage code with a finite or unlimited use count.
// Percent is the share of the base price the payer is charged: a code with
// Percent=50 halves the price, Percent=0 makes the order free.
// Count == -1 means unlimited uses.
type Discount struct {
	bun.BaseModel `bun:"table:discounts"`

	Code    string `bun:"code,pk" json:"code"`
	Percent int64  `bun:"percent,notnull" json:"percent"`
	Count   int    `bun:"count,notnull" json:"count"`
}

// Unlimited reports whether the code never runs out.
func (d *Discount) Unlimited() bool {
	return d.Count == -1
}
