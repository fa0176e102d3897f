package subscriber

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

// Device-scoped telemetry topics. Position fixes and recognized utterances
// replace what the original client pulled from the browser's geolocation and
// speech APIs; the trigger topic is the help button.
const (
	locationTopic  = "/safety/device/+/location"
	utteranceTopic = "/safety/device/+/utterance"
	triggerTopic   = "/safety/device/+/trigger"
)

type locationFeed interface {
	Update(p domain.Position)
	Fail(err error)
}

type triggerService interface {
	OnUtterance(text string) bool
	OnManual() bool
}

type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	Error     string  `json:"error,omitempty"`
}

type utteranceMessage struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

type TelemetrySubscriber struct {
	client     mqtt.Client
	feed       locationFeed
	triggerSvc triggerService
}

func NewTelemetrySubscriber(client mqtt.Client, feed locationFeed, triggerSvc triggerService) *TelemetrySubscriber {
	return &TelemetrySubscriber{
		client:     client,
		feed:       feed,
		triggerSvc: triggerSvc,
	}
}

func (s *TelemetrySubscriber) Start() error {
	subscriptions := map[string]mqtt.MessageHandler{
		locationTopic:  s.handlePosition,
		utteranceTopic: s.handleUtterance,
		triggerTopic:   s.handleTrigger,
	}

	for topic, handler := range subscriptions {
		token := s.client.Subscribe(topic, 1, handler)
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

func (s *TelemetrySubscriber) handlePosition(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid position message: %v", err)
		return
	}

	// The device reports sensor failures (permission denied, timeout) on the
	// same topic; they land in the feed's error slot, not as a fix.
	if raw.Error != "" {
		s.feed.Fail(errors.New(raw.Error))
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		log.Printf("position validation error: %v", err)
		return
	}

	s.feed.Update(domain.Position{
		Coordinate: domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude},
		Timestamp:  time.Unix(raw.Timestamp, 0),
	})
}

func (s *TelemetrySubscriber) handleUtterance(_ mqtt.Client, msg mqtt.Message) {
	var raw utteranceMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid utterance message: %v", err)
		return
	}
	if raw.Text == "" {
		return
	}

	if s.triggerSvc.OnUtterance(raw.Text) {
		log.Printf("voice trigger fired: text=%q final=%t", raw.Text, raw.Final)
	}
}

func (s *TelemetrySubscriber) handleTrigger(_ mqtt.Client, msg mqtt.Message) {
	s.triggerSvc.OnManual()
	log.Printf("manual trigger fired: topic=%s", msg.Topic())
}

func validatePositionMessage(msg *positionMessage) error {
	if err := domain.ValidateCoordinate(msg.Latitude, msg.Longitude); err != nil {
		return err
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
