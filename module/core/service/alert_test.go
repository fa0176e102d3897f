package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

type mockContactStore struct {
	loadFn    func(ctx context.Context) (*domain.Contact, error)
	saveCalls []time.Duration
}

func (m *mockContactStore) Load(ctx context.Context) (*domain.Contact, error) {
	return m.loadFn(ctx)
}

func (m *mockContactStore) Save(_ context.Context, _ domain.Contact, ttl time.Duration) error {
	m.saveCalls = append(m.saveCalls, ttl)
	return nil
}

type mockNotifier struct {
	sendFn func(ctx context.Context, phone string, pos domain.Position) (domain.Delivery, error)
	phones []string
}

func (m *mockNotifier) SendAlert(ctx context.Context, phone string, pos domain.Position) (domain.Delivery, error) {
	m.phones = append(m.phones, phone)
	return m.sendFn(ctx, phone, pos)
}

type mockPublisher struct {
	events []*domain.AlertEvent
}

func (m *mockPublisher) PublishAlertEvent(_ context.Context, ev *domain.AlertEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func storedContact() *mockContactStore {
	return &mockContactStore{
		loadFn: func(_ context.Context) (*domain.Contact, error) {
			return &domain.Contact{Phone: "+15551234567", Email: "a@b.com"}, nil
		},
	}
}

func feedWithFix() *LocationFeed {
	feed := NewLocationFeed()
	feed.Update(domain.Position{
		Coordinate: domain.Coordinate{Lat: 37.7749, Lon: -122.4194},
		Timestamp:  time.Unix(1715003456, 0),
	})
	return feed
}

func TestDispatch_NoContact(t *testing.T) {
	contacts := &mockContactStore{
		loadFn: func(_ context.Context) (*domain.Contact, error) { return nil, nil },
	}
	n := &mockNotifier{
		sendFn: func(_ context.Context, _ string, _ domain.Position) (domain.Delivery, error) {
			return domain.Delivery{}, nil
		},
	}
	svc := NewAlertService(contacts, feedWithFix(), n, &mockPublisher{})

	outcome := svc.Dispatch(context.Background())
	if outcome.Success {
		t.Fatal("expected failure without a stored contact")
	}
	if outcome.Message != MsgContactRequired {
		t.Errorf("expected %q, got %q", MsgContactRequired, outcome.Message)
	}
	if len(n.phones) != 0 {
		t.Fatalf("expected zero provider calls, got %d", len(n.phones))
	}
	if len(contacts.saveCalls) != 0 {
		t.Fatalf("no TTL refresh without a contact, got %d saves", len(contacts.saveCalls))
	}
}

func TestDispatch_NoLocation(t *testing.T) {
	contacts := storedContact()
	n := &mockNotifier{
		sendFn: func(_ context.Context, _ string, _ domain.Position) (domain.Delivery, error) {
			return domain.Delivery{}, nil
		},
	}
	svc := NewAlertService(contacts, NewLocationFeed(), n, &mockPublisher{})

	outcome := svc.Dispatch(context.Background())
	if outcome.Success {
		t.Fatal("expected failure without a location fix")
	}
	if outcome.Message != MsgLocationPending {
		t.Errorf("expected %q, got %q", MsgLocationPending, outcome.Message)
	}
	if len(n.phones) != 0 {
		t.Fatalf("expected zero provider calls, got %d", len(n.phones))
	}
	// TTL is still refreshed: the contact was present and the user is active.
	if len(contacts.saveCalls) != 1 {
		t.Fatalf("expected 1 TTL refresh, got %d", len(contacts.saveCalls))
	}
}

func TestDispatch_Success(t *testing.T) {
	contacts := storedContact()
	var sentPos domain.Position
	n := &mockNotifier{
		sendFn: func(_ context.Context, _ string, pos domain.Position) (domain.Delivery, error) {
			sentPos = pos
			return domain.Delivery{TextSent: true, CallPlaced: true}, nil
		},
	}
	events := &mockPublisher{}
	svc := NewAlertService(contacts, feedWithFix(), n, events)

	outcome := svc.Dispatch(context.Background())
	if !outcome.Success {
		t.Fatalf("expected success, got %q", outcome.Message)
	}
	if outcome.Message != MsgAlertSent {
		t.Errorf("expected %q, got %q", MsgAlertSent, outcome.Message)
	}
	if len(n.phones) != 1 || n.phones[0] != "+15551234567" {
		t.Fatalf("expected exactly one provider call to +15551234567, got %v", n.phones)
	}
	if sentPos.Coordinate.Lat != 37.7749 || sentPos.Coordinate.Lon != -122.4194 {
		t.Errorf("provider got wrong position: %v", sentPos.Coordinate)
	}
	if len(contacts.saveCalls) != 1 || contacts.saveCalls[0] != domain.ContactTTL {
		t.Fatalf("expected one 96h TTL refresh, got %v", contacts.saveCalls)
	}
	if len(events.events) != 1 || !events.events[0].Success {
		t.Fatalf("expected one success event, got %v", events.events)
	}
}

func TestDispatch_ProviderFailure_NotRetried(t *testing.T) {
	contacts := storedContact()
	n := &mockNotifier{
		sendFn: func(_ context.Context, _ string, _ domain.Position) (domain.Delivery, error) {
			return domain.Delivery{TextSent: true, Detail: "twilio: status 401: auth failed"},
				errors.New("place call: twilio: status 401: auth failed")
		},
	}
	events := &mockPublisher{}
	svc := NewAlertService(contacts, feedWithFix(), n, events)

	outcome := svc.Dispatch(context.Background())
	if outcome.Success {
		t.Fatal("expected failure on provider error")
	}
	if outcome.Message != MsgSendFailed {
		t.Errorf("expected %q, got %q", MsgSendFailed, outcome.Message)
	}
	// Exactly one attempt, and the partial state tells the caller the text
	// alone went through.
	if len(n.phones) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(n.phones))
	}
	if !outcome.Delivery.TextSent || outcome.Delivery.CallPlaced {
		t.Errorf("expected text-only partial delivery, got %+v", outcome.Delivery)
	}
	if !strings.Contains(outcome.Delivery.Detail, "401") {
		t.Errorf("expected provider detail, got %q", outcome.Delivery.Detail)
	}
	// TTL refreshed even on failure.
	if len(contacts.saveCalls) != 1 {
		t.Fatalf("expected TTL refresh on failed dispatch, got %d saves", len(contacts.saveCalls))
	}
	if len(events.events) != 1 || events.events[0].Success {
		t.Fatalf("expected one failure event, got %v", events.events)
	}
}

func TestSend_PublishesEvent(t *testing.T) {
	n := &mockNotifier{
		sendFn: func(_ context.Context, _ string, _ domain.Position) (domain.Delivery, error) {
			return domain.Delivery{TextSent: true, CallPlaced: true}, nil
		},
	}
	events := &mockPublisher{}
	svc := NewAlertService(storedContact(), NewLocationFeed(), n, events)

	pos := domain.Position{
		Coordinate: domain.Coordinate{Lat: 37.7749, Lon: -122.4194},
		Timestamp:  time.Unix(1715003456, 0),
	}
	if _, err := svc.Send(context.Background(), "+15551234567", pos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	ev := events.events[0]
	if ev.Phone != "+15551234567" || ev.Lat != 37.7749 || ev.Lon != -122.4194 {
		t.Errorf("unexpected event payload: %+v", ev)
	}
}
