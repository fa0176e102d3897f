package contactstore

import (
	"context"
	"time"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

// Store persists the single emergency contact record with an expiry.
// An expired record is indistinguishable from an absent one: Load purges it
// lazily and reports absence; there is no background sweep.
type Store interface {
	// Save overwrites the record with a fresh TTL.
	Save(ctx context.Context, c domain.Contact, ttl time.Duration) error
	// Load returns the record, or nil when absent or expired.
	Load(ctx context.Context) (*domain.Contact, error)
	// Clear removes the record unconditionally (explicit user reset).
	Clear(ctx context.Context) error
}
