package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/council-xenith/internal/application/notification"
	"github.com/council-xenith/internal/config"
	"github.com/council-xenith/internal/infrastructure/awscfg"
	"github.com/council-xenith/internal/infrastructure/cache"
	"github.com/council-xenith/internal/infrastructure/dynamo"
	"github.com/council-xenith/internal/infrastructure/google"
	jwtinfra "github.com/council-xenith/internal/infrastructure/jwt"
	s3infra "github.com/council-xenith/internal/infrastructure/s3"
	"github.com/council-xenith/internal/infrastructure/smtp"
	"github.com/council-xenith/internal/infrastructure/sns"
	"github.com/council-xenith/internal/pkg/metrics"
	transporthttp "github.com/council-xenith/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	kv, err := cache.New(ctx, cfg)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer kv.Close()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.S3BucketName, cfg.MediaBaseURL)

	// SNS fan-out of announcements is optional.
	var publisher notification.Publisher
	if cfg.SNSTopicARN != "" {
		publisher = sns.NewPublisher(awsCfg, cfg.AWSEndpointURL, cfg.SNSTopicARN)
	} else {
		log.Println("WARN: SNS_TOPIC_ARN not set, announcements will not be published")
	}

	if err := metrics.Register(nil); err != nil {
		log.Fatalf("register metrics: %v", err)
	}

	deps := &transporthttp.Deps{
		Participants:   dynamo.NewParticipantRepo(dynamoClient, cfg.DynamoTables.Participants, cfg.DynamoTables.UniqueClaims),
		Templates:      dynamo.NewTemplateRepo(dynamoClient, cfg.DynamoTables.Templates),
		Submissions:    dynamo.NewSubmissionRepo(dynamoClient, cfg.DynamoTables.Submissions, cfg.DynamoTables.UniqueClaims),
		Notifications:  dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		MediaRepo:      dynamo.NewMediaRepo(dynamoClient, cfg.DynamoTables.Media),
		Objects:        s3Store,
		Cache:          kv,
		Mailer:         smtp.NewMailer(cfg),
		Publisher:      publisher,
		Tokens:         jwtProvider,
		GoogleVerifier: google.NewVerifier(cfg.GoogleClientID),
		Metrics:        promhttp.Handler(),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
