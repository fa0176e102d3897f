package service

import (
	"context"
	"log"
	"time"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

// Outcome messages surfaced to callers.
const (
	MsgAlertSent       = "Alert sent successfully!"
	MsgContactRequired = "contact required"
	MsgLocationPending = "location pending"
	MsgSendFailed      = "Error sending alert"
)

type contactStore interface {
	Load(ctx context.Context) (*domain.Contact, error)
	Save(ctx context.Context, c domain.Contact, ttl time.Duration) error
}

type positionSource interface {
	Snapshot() (*domain.Position, error)
}

type alertNotifier interface {
	SendAlert(ctx context.Context, phone string, pos domain.Position) (domain.Delivery, error)
}

type alertPublisher interface {
	PublishAlertEvent(ctx context.Context, ev *domain.AlertEvent) error
}

// AlertService orchestrates a dispatch attempt: stored contact, then latest
// fix, then exactly one provider call. There is no automatic retry: the
// dispatcher is safe to call again manually, and double-delivery of an
// emergency alert beats silent loss, but retrying on its own risks duplicate
// calls to the contact. Concurrent dispatches are not serialized against
// each other for the same reason.
type AlertService struct {
	contacts contactStore
	feed     positionSource
	notifier alertNotifier
	events   alertPublisher
}

func NewAlertService(contacts contactStore, feed positionSource, notifier alertNotifier, events alertPublisher) *AlertService {
	return &AlertService{
		contacts: contacts,
		feed:     feed,
		notifier: notifier,
		events:   events,
	}
}

// Dispatch runs the full pipeline. Precondition failures are normal terminal
// states, not errors: the caller prompts for a contact or waits for a fix
// and calls again. The contact TTL is refreshed on every attempt that finds
// a contact, whether or not the provider call succeeds.
func (s *AlertService) Dispatch(ctx context.Context) domain.DispatchOutcome {
	contact, err := s.contacts.Load(ctx)
	if err != nil {
		log.Printf("dispatch: load contact: %v", err)
	}
	if contact == nil {
		return domain.DispatchOutcome{Message: MsgContactRequired}
	}

	if err := s.contacts.Save(ctx, *contact, domain.ContactTTL); err != nil {
		log.Printf("dispatch: refresh contact ttl: %v", err)
	}

	pos, srcErr := s.feed.Snapshot()
	if pos == nil {
		if srcErr != nil {
			log.Printf("dispatch: no location fix: %v", srcErr)
		}
		return domain.DispatchOutcome{Message: MsgLocationPending}
	}

	delivery, err := s.Send(ctx, contact.Phone, *pos)
	if err != nil {
		log.Printf("dispatch: send alert to %s: %v", contact.Phone, err)
		return domain.DispatchOutcome{Message: MsgSendFailed, Delivery: delivery}
	}

	return domain.DispatchOutcome{Success: true, Message: MsgAlertSent, Delivery: delivery}
}

// Send invokes the provider once for an explicit phone and position, and
// publishes the attempt's outcome for downstream consumers. The returned
// Delivery tells the caller which half of the text-then-call pair went
// through when the provider fails partway.
func (s *AlertService) Send(ctx context.Context, phone string, pos domain.Position) (domain.Delivery, error) {
	delivery, err := s.notifier.SendAlert(ctx, phone, pos)

	ev := &domain.AlertEvent{
		Phone:      phone,
		Lat:        pos.Coordinate.Lat,
		Lon:        pos.Coordinate.Lon,
		Success:    err == nil,
		TextSent:   delivery.TextSent,
		CallPlaced: delivery.CallPlaced,
		Detail:     delivery.Detail,
		Timestamp:  time.Now().Unix(),
	}
	if pubErr := s.events.PublishAlertEvent(ctx, ev); pubErr != nil {
		log.Printf("publish alert event: %v", pubErr)
	}

	return delivery, err
}
