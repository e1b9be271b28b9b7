package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/hmzi67/cervical-posture-detection/internal/api"
	"github.com/hmzi67/cervical-posture-detection/internal/auth"
	"github.com/hmzi67/cervical-posture-detection/internal/config"
	"github.com/hmzi67/cervical-posture-detection/internal/consumer"
	"github.com/hmzi67/cervical-posture-detection/internal/domain"
	"github.com/hmzi67/cervical-posture-detection/internal/feedback"
	"github.com/hmzi67/cervical-posture-detection/internal/logging"
	"github.com/hmzi67/cervical-posture-detection/internal/store"
	httptransport "github.com/hmzi67/cervical-posture-detection/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	publisher, closePublisher := buildPublisher(cfg, log)
	defer closePublisher()

	narrator := feedback.NewNarrator(publisher,
		feedback.WithInterval(cfg.FeedbackInterval),
		feedback.WithBuffer(cfg.FeedbackBuffer),
		feedback.WithLogger(log.WithField("component", "narrator")),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := narrator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("narrator stopped")
		}
	}()

	service := domain.NewService(store.NewInMemoryRepository(), narrator)

	if cfg.ConsumeFrames() {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.KafkaBrokers,
			GroupID:        cfg.ConsumerGroup,
			Topic:          cfg.FrameTopic,
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        100 * time.Millisecond,
			CommitInterval: time.Second,
		})
		consumerLog := log.WithFields(logrus.Fields{"component": "frame-consumer", "topic": cfg.FrameTopic})
		proc := consumer.NewProcessor(reader,
			consumer.NewFrameHandler(service, cfg.MinLandmarkVisibility, consumerLog),
			consumer.WithLogger(consumerLog),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reader.Close()
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				consumerLog.WithError(err).Error("consumer stopped")
			}
		}()
		consumerLog.Info("frame consumer enabled")
	}

	handler := api.NewHandler(service,
		api.WithLogger(log.WithField("component", "api")),
		api.WithMinVisibility(cfg.MinLandmarkVisibility),
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	middleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, httptransport.CORS(cfg.CORSOrigin)(httptransport.RequestLogger(log)(middleware.Wrap(mux))))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("posture-service listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-stop
	log.Info("posture-service shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
	cancel()
	wg.Wait()
}

func buildPublisher(cfg config.Config, log logrus.FieldLogger) (feedback.Publisher, func()) {
	if !cfg.PublishFeedback() {
		log.Info("FEEDBACK_TOPIC not set, feedback cues are discarded")
		return feedback.NoopPublisher{}, func() {}
	}
	publisher := feedback.NewKafkaPublisher(cfg.KafkaBrokers, cfg.FeedbackTopic)
	log.WithField("topic", cfg.FeedbackTopic).Info("publishing feedback cues to kafka")
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("close feedback publisher")
		}
	}
}
