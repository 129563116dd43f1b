package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/fg-probability-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fg-probability-service/internal/adapter/kafka"
	"github.com/couchcryptid/fg-probability-service/internal/config"
	"github.com/couchcryptid/fg-probability-service/internal/domain"
	"github.com/couchcryptid/fg-probability-service/internal/observability"
	"github.com/couchcryptid/fg-probability-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	model, err := domain.LoadModel(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load model tables", "error", err, "path", cfg.ModelPath)
		os.Exit(1)
	}
	logger.Info("model loaded", "teams", len(model.Teams()), "path", cfg.ModelPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := readiness{}

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(model, metrics, logger)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		ready.pipeline = p

		// Start batch scoring pipeline.
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, model, ready, metrics, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// readiness is ready once the model is loaded, and when the Kafka pipeline
// runs, once it has loaded its first batch.
type readiness struct {
	pipeline *pipeline.Pipeline
}

func (r readiness) CheckReadiness(ctx context.Context) error {
	if r.pipeline == nil {
		return nil
	}
	return r.pipeline.CheckReadiness(ctx)
}
