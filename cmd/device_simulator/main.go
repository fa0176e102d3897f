package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type utteranceMessage struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Phrases a speech recognizer might emit; a few contain trigger keywords.
var phrases = []string{
	"what time is it",
	"turn left at the corner",
	"please send help now",
	"I think we are lost",
	"call the police",
	"this is an emergency",
	"the weather looks fine",
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("shecurity-device-sim")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	deviceID := fmt.Sprintf("device-%04d", rand.Intn(10000))

	// Walk around central San Francisco.
	lat, lon := 37.7749, -122.4194

	log.Printf("connected to %s as %s, publishing every %ds...", broker, deviceID, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		lat += (rand.Float64() - 0.5) * 0.001
		lon += (rand.Float64() - 0.5) * 0.001

		pos := positionMessage{
			Latitude:  lat,
			Longitude: lon,
			Timestamp: time.Now().Unix(),
		}
		publish(client, fmt.Sprintf("/safety/device/%s/location", deviceID), pos)

		// 20% chance to say something; 5% to press the help button.
		switch roll := rand.Float64(); {
		case roll < 0.20:
			utt := utteranceMessage{
				Text:  phrases[rand.Intn(len(phrases))],
				Final: rand.Float64() < 0.5,
			}
			publish(client, fmt.Sprintf("/safety/device/%s/utterance", deviceID), utt)
		case roll < 0.25:
			publish(client, fmt.Sprintf("/safety/device/%s/trigger", deviceID), map[string]int64{
				"pressed_at": time.Now().Unix(),
			})
		}
	}
}

func publish(client mqtt.Client, topic string, v any) {
	payload, _ := json.Marshal(v)
	token := client.Publish(topic, 1, false, payload)
	token.Wait()
	log.Printf("published to %s: %s", topic, payload)
}
