package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/cloud"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/config"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/database"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/ingest"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/ingestor"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.SetupLogging(config.LogLevel(), config.LogFormat()); err != nil {
		log.Fatal().Err(err).Msg("logging setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	// gateways publish machine generated files, so blank names and types
	// are treated as errors here
	opts := service.Options{Policy: ingest.Policy{RequireName: true, RequireType: true}}
	if config.UseCloudServices() && config.SNSTopicArn() != "" {
		snsc, err := cloud.NewSNSClient(ctx, config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Fatal().Err(err).Msg("sns client failed")
		}
		opts.Notifier = snsc
	}
	svcs, err := service.New(db, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("service setup failed")
	}

	client, err := ingestor.Connect(config.MQTTBroker(), config.MQTTClientID())
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := ingestor.NewHandler(svcs.Datasets, 30*time.Second)
	if err := ingestor.Subscribe(client, config.MQTTTopic(), handler.MessageHandler(ctx)); err != nil {
		log.Fatal().Err(err).Msg("subscribe failed")
	}

	log.Info().Str("topic", config.MQTTTopic()).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("ingestor stopped")
}
