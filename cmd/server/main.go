package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/iammanojeet/SHecurity/config"
	"github.com/iammanojeet/SHecurity/module/core"
	"github.com/iammanojeet/SHecurity/module/core/domain"
)

func main() {
	cfg := config.Load()

	if cfg.TwilioSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioPhone == "" {
		log.Fatal("TWILIO_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE are required")
	}

	stations, err := domain.LoadStations(cfg.StationsPath)
	if err != nil {
		log.Fatalf("stations: %v", err)
	}
	log.Printf("loaded %d stations from %s", len(stations), cfg.StationsPath)

	redisClient, err := config.NewRedis(cfg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	creds := core.ProviderCredentials{
		AccountSID: cfg.TwilioSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioPhone,
	}

	coreModule, err := core.Build(redisClient, amqpConn, mqttClient, creds, stations)
	if err != nil {
		log.Fatalf("core module: %v", err)
	}

	if err := coreModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(redisClient, amqpConn, mqttClient)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
