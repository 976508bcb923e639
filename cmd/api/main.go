package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/cloud"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/config"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/http"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/ingest"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/report"
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

	opts := service.Options{
		Policy:       ingest.Policy{},
		HistoryLimit: config.HistoryLimit(),
		Report:       report.Options{Compress: true, DetailRows: config.ReportDetailRows()},
	}
	if config.UseCloudServices() {
		s3c, err := cloud.NewS3Client(ctx, config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client failed")
		}
		opts.Archive = s3c
		if arn := config.SNSTopicArn(); arn != "" {
			snsc, err := cloud.NewSNSClient(ctx, config.AWSRegion(), arn)
			if err != nil {
				log.Fatal().Err(err).Msg("sns client failed")
			}
			opts.Notifier = snsc
		}
		log.Info().Str("bucket", config.S3Bucket()).Msg("cloud services enabled")
	}

	svcs, err := service.New(db, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("service setup failed")
	}

	maxUpload := config.MaxUploadBytes()
	app := fiber.New(fiber.Config{
		ErrorHandler: httpHandlers.ErrorHandler,
		// multipart framing on top of the file itself
		BodyLimit: maxUpload + 1<<20,
	})
	httpHandlers.Register(app, svcs, int64(maxUpload))

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Str("db_driver", db.DriverName()).Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
