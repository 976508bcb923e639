package main

import (
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/config"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/ingestor"
)

func main() {
	batches := flag.Int("batches", 10, "datasets to publish")
	rows := flag.Int("rows", 20, "rows per dataset")
	interval := flag.Duration("interval", 2*time.Second, "pause between datasets")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.SetupLogging(config.LogLevel(), config.LogFormat()); err != nil {
		log.Fatal().Err(err).Msg("logging setup failed")
	}

	client, err := ingestor.Connect(config.MQTTBroker(), config.MQTTClientID()+"-simulator")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	prefix := strings.TrimSuffix(config.MQTTTopic(), "+")
	for i := 0; i < *batches; i++ {
		payload, err := ingestor.GenerateCSV(rng, *rows)
		if err != nil {
			log.Fatal().Err(err).Msg("generate dataset")
		}
		topic := fmt.Sprintf("%splant-%s-%02d.csv", prefix, time.Now().UTC().Format("20060102T150405"), i)
		if err := ingestor.Publish(client, topic, payload); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("publish failed")
			continue
		}
		log.Info().Str("topic", topic).Int("rows", *rows).Msg("dataset published")
		time.Sleep(*interval)
	}
	log.Info().Msg("simulation done")
}
