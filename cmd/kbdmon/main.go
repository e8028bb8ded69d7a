package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/robotalks/splitkbd/pkg/cli/sh"
	"github.com/robotalks/splitkbd/pkg/status"
	"github.com/robotalks/splitkbd/pkg/status/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/kbd/"
)

func init() {
	if val := os.Getenv("KBD_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(context.Background()); err != nil {
		log.Fatalln(err)
	}

	mqtt.SubscribeStatus(q, func(deviceID string, s *status.Snapshot) {
		log.Printf("%s [%s]", sh.FormatSnapshot(s), s.KeyChars())
	})
	<-(chan struct{})(nil)
}
