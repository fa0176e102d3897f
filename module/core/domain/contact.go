package domain

import "time"

// ContactTTL is how long a stored emergency contact stays valid. Every
// dispatch attempt re-saves the record with this TTL so an active user is
// not logged out of their contact mid-emergency.
const ContactTTL = 96 * time.Hour

// Contact is the pre-registered emergency contact.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}
