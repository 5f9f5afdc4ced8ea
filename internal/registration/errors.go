package registration

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound means the authenticated user has no persisted record.
	ErrUserNotFound = errors.New("user not found")

	// ErrWorkshopNotFound means a requested workshop id does not exist.
	ErrWorkshopNotFound = errors.New("workshop not found")

	// ErrNoEligibleWorkshops means every requested workshop was closed,
	// full, or already registered for this user.
	ErrNoEligibleWorkshops = errors.New("no eligible workshops to register")
)

// GatewayRejectionError is a non-zero result code from the gateway at
// initiation time. It is a business rejection, not a transport failure.
type GatewayRejectionError struct {
	ResCode     string
	Description string
}

func (e *GatewayRejectionError) Error() string {
	return fmt.Sprintf("gateway rejected payment: ResCode=%s %s", e.ResCode, e.Description)
}
