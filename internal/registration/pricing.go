package registration

import (
	"context"
	"fmt"

	"ms-registration/internal/models"
)

// price sums the workshop prices and applies the optional discount code.
// An unknown or exhausted code is ignored with a log line, never an error.
// A finite code is consumed at offer time with a conditional decrement, so
// concurrent initiations cannot overspend it.
func (s *Service) price(ctx context.Context, workshops []*models.Workshop, code string) int64 {
	var base int64
	for _, ws := range workshops {
		base += ws.Price
	}

	if code == "" {
		return base
	}

	discount, err := s.Discounts.GetByCode(ctx, code)
	if err != nil {
		s.Logger.Warn("DISCOUNT", fmt.Sprintf("discount code %q not usable, ignoring: %v", code, err))
		return base
	}

	if !discount.Unlimited() {
		redeemed, err := s.Discounts.Redeem(ctx, code)
		if err != nil {
			s.Logger.Error("DISCOUNT", fmt.Sprintf("failed to redeem discount %q: %v", code, err))
			return base
		}
		if !redeemed {
			s.Logger.Warn("DISCOUNT", fmt.Sprintf("discount code %q is exhausted, ignoring", code))
			return base
		}
	}

	discounted := base * discount.Percent / 100
	s.Logger.Info("DISCOUNT", fmt.Sprintf("applied code %q: %d -> %d", code, base, discounted))
	return discounted
}
