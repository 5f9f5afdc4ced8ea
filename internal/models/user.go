package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk" json:"id"`
	FirstName string    `bun:"first_name" json:"first_name"`
	LastName  string    `bun:"last_name" json:"last_name"`
	Email     string    `bun:"email,unique,notnull" json:"email"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}

// PendingOrder is an unconfirmed gateway transaction recorded against a user.
// It exists from payment initiation until the reconciler removes it.
type PendingOrder struct {
	bun.BaseModel `bun:"table:pending_orders"`

	TransactionID string    `bun:"transaction_id,pk" json:"transaction_id"`
	OrderID       int64     `bun:"order_id,unique,notnull" json:"order_id"`
	UserID        string    `bun:"user_id,notnull" json:"user_id"`
	WorkshopIDs   []string  `bun:"workshop_ids" json:"workshop_ids"`
	Amount        int64     `bun:"amount,notnull" json:"amount"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
}

// Order is a completed transaction. Rows are append-only.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID             string    `bun:"id,pk" json:"id"`
	UserID         string    `bun:"user_id,notnull" json:"user_id"`
	OrderID        int64     `bun:"order_id" json:"order_id"`
	WorkshopIDs    []string  `bun:"workshop_ids" json:"workshop_ids"`
	Amount         int64     `bun:"amount" json:"amount"`
	ResCode        string    `bun:"res_code" json:"res_code"`
	RetrievalRefNo string    `bun:"retrieval_ref_no" json:"retrieval_ref_no"`
	SystemTraceNo  string    `bun:"system_trace_no" json:"system_trace_no"`
	CreatedAt      time.Time `bun:"created_at" json:"created_at"`
}

// Registration links a user to a workshop they are committed to attend.
type Registration struct {
	bun.BaseModel `bun:"table:registrations"`

	ID         string    `bun:"id,pk" json:"id"`
	UserID     string    `bun:"user_id,notnull" json:"user_id"`
	WorkshopID string    `bun:"workshop_id,notnull" json:"workshop_id"`
	CreatedAt  time.Time `bun:"created_at" json:"created_at"`
}
