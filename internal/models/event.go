package models

import "time"

// RegistrationEvent is published to Kafka once per committed workshop
// registration. The mailer consumes it to send the welcome email.
type RegistrationEvent struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	WorkshopID    string    `json:"workshop_id"`
	WorkshopTitle string    `json:"workshop_title"`
	RegisteredAt  time.Time `json:"registered_at"`
}
