package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-registration/internal/models"
)

// commit applies a verified transaction. The user-side commit (order row,
// registrations, pending-order removal) runs first in one database
// transaction; only when it lands are the workshop records touched. A
// user-side failure therefore leaves the workshops exactly as they were.
func (s *Service) commit(ctx context.Context, pending *models.PendingOrder, outcome *models.TransactionOutcome) error {
	user, err := s.Users.GetUserByID(ctx, pending.UserID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", pending.UserID, err)
	}

	if err := s.Users.CommitOrder(ctx, user, pending, outcome); err != nil {
		return fmt.Errorf("commit order %d: %w", pending.OrderID, err)
	}

	s.finalizeWorkshops(ctx, user, pending.WorkshopIDs)
	return nil
}

// commitFree is the zero-price path: same committer, no gateway transaction.
func (s *Service) commitFree(ctx context.Context, user *models.User, workshopIDs []string) error {
	if err := s.Users.CommitFreeRegistration(ctx, user, workshopIDs); err != nil {
		return err
	}
	s.finalizeWorkshops(ctx, user, workshopIDs)
	return nil
}

// finalizeWorkshops does the per-workshop bookkeeping after the user-side
// commit: seat reservation, audit line, completion event. The registration
// is already durable at this point, so failures here are logged and flagged
// for manual review rather than propagated.
func (s *Service) finalizeWorkshops(ctx context.Context, user *models.User, workshopIDs []string) {
	for _, id := range workshopIDs {
		ws, err := s.Workshops.GetByID(ctx, id)
		if err != nil {
			s.Logger.Error("COMMIT", fmt.Sprintf("workshop %s: load failed after commit: %v", id, err))
			continue
		}

		reserved, err := s.Workshops.ReserveSeat(ctx, id)
		if err != nil {
			s.Logger.Error("COMMIT", fmt.Sprintf("workshop %s: seat reservation failed: %v", id, err))
		} else if !reserved {
			s.Logger.Error("COMMIT", fmt.Sprintf("workshop %s: filled up between initiation and commit, registration for %s needs manual review", id, user.Email))
		}

		if s.Audit != nil {
			if err := s.Audit.Append(user.Email, ws.Title); err != nil {
				s.Logger.Error("COMMIT", fmt.Sprintf("audit log append failed for %s: %v", user.Email, err))
			}
		}

		s.publishCompleted(user, ws)
	}
}

func (s *Service) publishCompleted(user *models.User, ws *models.Workshop) {
	if s.Events == nil {
		return
	}

	event := models.RegistrationEvent{
		UserID:        user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		WorkshopID:    ws.ID,
		WorkshopTitle: ws.Title,
		RegisteredAt:  time.Now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to marshal registration event: %v", err))
		return
	}

	if err := s.Events.Publish(s.Topics.RegistrationCompleted, user.ID, value); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish registration event for %s: %v", user.Email, err))
	}
}
