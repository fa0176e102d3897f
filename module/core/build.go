package core

import (
	"context"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/iammanojeet/SHecurity/module/core/domain"
	handler "github.com/iammanojeet/SHecurity/module/core/internal/handler/http"
	"github.com/iammanojeet/SHecurity/module/core/internal/handler/subscriber"
	contactredis "github.com/iammanojeet/SHecurity/module/core/internal/repository/contactstore/redis"
	"github.com/iammanojeet/SHecurity/module/core/internal/repository/notifier/twilio"
	"github.com/iammanojeet/SHecurity/module/core/internal/repository/publisher/rabbitmq"
	"github.com/iammanojeet/SHecurity/module/core/service"
)

const displayStationCount = 2

// ProviderCredentials configure the Twilio-backed notifier.
type ProviderCredentials struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type Module struct {
	Feed       *service.LocationFeed
	TriggerSvc *service.TriggerService
	AlertSvc   *service.AlertService
	StationSvc *service.StationService
	handler    *handler.AlertHandler
	subscriber *subscriber.TelemetrySubscriber
}

func Build(redisClient *goredis.Client, amqpConn *amqp.Connection, mqttClient mqtt.Client, creds ProviderCredentials, stations []domain.Station) (*Module, error) {
	contacts := contactredis.NewContactStore(redisClient)
	n := twilio.New(creds.AccountSID, creds.AuthToken, creds.FromNumber)

	events, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	feed := service.NewLocationFeed()
	stationSvc := service.NewStationService(stations)
	alertSvc := service.NewAlertService(contacts, feed, n, events)

	// A trigger fire starts its own dispatch goroutine: stopping the
	// listener later never cancels an in-flight dispatch, and a hung
	// provider call blocks nothing but this goroutine. Two rapid triggers
	// run two independent attempts.
	triggerSvc := service.NewTriggerService(func(source string) {
		go func() {
			outcome := alertSvc.Dispatch(context.Background())
			log.Printf("alert dispatch: source=%s success=%t message=%q", source, outcome.Success, outcome.Message)

			// Ranking is for display only and runs regardless of the
			// dispatch outcome.
			if pos, _ := feed.Snapshot(); pos != nil {
				for _, st := range stationSvc.Nearest(*pos, displayStationCount) {
					log.Printf("nearest station: name=%q distance_km=%.2f", st.Name, st.DistanceKm)
				}
			}
		}()
	})

	h := handler.NewAlertHandler(alertSvc, contacts, feed, stationSvc, triggerSvc)
	sub := subscriber.NewTelemetrySubscriber(mqttClient, feed, triggerSvc)

	return &Module{
		Feed:       feed,
		TriggerSvc: triggerSvc,
		AlertSvc:   alertSvc,
		StationSvc: stationSvc,
		handler:    h,
		subscriber: sub,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}
