package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/videogen/internal/config"
	"github.com/snappy-loop/videogen/internal/database"
	"github.com/snappy-loop/videogen/internal/kafka"
	"github.com/snappy-loop/videogen/internal/llm"
	"github.com/snappy-loop/videogen/internal/processor"
	"github.com/snappy-loop/videogen/internal/storage"
	"github.com/snappy-loop/videogen/internal/video"
	"github.com/snappy-loop/videogen/migrations"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Videogen Worker")

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Run(db.SQLDB()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	storageClient, err := storage.NewClient(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket,
		cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL, cfg.S3PublicURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage client")
	}

	provider, err := video.NewVeoProvider(
		cfg.GeminiAPIKey, cfg.GeminiAPIEndpoint,
		cfg.VeoModel, cfg.VeoFastModel,
		cfg.VideoOutputDir, cfg.VideoPollInterval, cfg.VideoMaxWait,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize video provider")
	}

	enhancer := llm.NewEnhancer(cfg.GeminiAPIKey, cfg.EnhancerModel)

	videoProcessor := processor.NewVideoProcessor(db, provider, enhancer, storageClient, cfg)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopicJobs, cfg.KafkaConsumerGroup, videoProcessor)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	log.Info().
		Str("topic", cfg.KafkaTopicJobs).
		Str("group", cfg.KafkaConsumerGroup).
		Msg("Worker started, consuming messages...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	cancel()

	log.Info().Msg("Worker exited")
}
