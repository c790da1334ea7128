package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/videogen/internal/auth"
	"github.com/snappy-loop/videogen/internal/config"
	"github.com/snappy-loop/videogen/internal/database"
	"github.com/snappy-loop/videogen/internal/handlers"
	"github.com/snappy-loop/videogen/internal/kafka"
	"github.com/snappy-loop/videogen/internal/services"
	"github.com/snappy-loop/videogen/internal/storage"
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

	log.Info().Msg("Starting Videogen API")

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Run(db.SQLDB()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	kafkaProducer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicJobs)
	defer kafkaProducer.Close()

	storageClient, err := storage.NewClient(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket,
		cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL, cfg.S3PublicURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage client")
	}

	videoService := services.NewVideoService(db, kafkaProducer, storageClient, cfg)
	h := handlers.NewHandler(videoService)
	authService := auth.NewService(db)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(authService.Middleware)
	api.HandleFunc("/videos", h.CreateVideo).Methods("POST")
	api.HandleFunc("/videos", h.ListVideos).Methods("GET")
	api.HandleFunc("/videos/{id}", h.GetVideo).Methods("GET")
	api.HandleFunc("/videos/{id}/events", h.VideoEvents).Methods("GET")
	api.HandleFunc("/assets/{id}", h.GetAsset).Methods("GET")

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the events endpoint holds WebSocket
		// connections open well past any sensible request deadline.
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
}
