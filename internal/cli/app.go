package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spacesedan/steamnoodles/config"
	"github.com/spacesedan/steamnoodles/internal/clients"
	"github.com/spacesedan/steamnoodles/internal/clients/kafka_client"
	"github.com/spacesedan/steamnoodles/internal/daterange"
	"github.com/spacesedan/steamnoodles/internal/db"
	"github.com/spacesedan/steamnoodles/internal/feedback"
	"github.com/spacesedan/steamnoodles/internal/ingest"
	"github.com/spacesedan/steamnoodles/internal/llm"
	"github.com/spacesedan/steamnoodles/internal/models"
	"github.com/spacesedan/steamnoodles/internal/render"
	"github.com/spacesedan/steamnoodles/internal/visualization"
)

// app holds everything a command may need. Fields a command does not ask
// for stay nil.
type app struct {
	store   db.ReviewStore
	ingest  *ingest.Service
	trends  *visualization.Handler
	checker llm.HealthChecker
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openStore(ctx context.Context, settings config.Settings) (*app, error) {
	store, err := db.Open(ctx, settings)
	if err != nil {
		return nil, err
	}
	a := &app{store: store}
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			slog.Warn("[CLI] Closing store failed", slog.String("error", err.Error()))
		}
	})
	return a, nil
}

func (a *app) withTrends(settings config.Settings) {
	a.trends = visualization.NewHandler(
		daterange.NewResolver(settings.MaxSpan()),
		render.NewPlotRenderer(settings.OutputDir),
		a.store,
		models.ChartTrendLine,
	)
}

// withIngest builds the feedback pipeline and its optional Valkey dedup and
// Kafka fan-out. Either is skipped when its address is not configured.
func (a *app) withIngest(settings config.Settings) error {
	backend, checker, err := llm.New(settings)
	if err != nil {
		return err
	}
	a.checker = checker

	pipeline := feedback.NewPipeline(backend, feedback.WithConcurrency(settings.FeedbackConcurrency))

	var opts []ingest.Option
	if settings.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(clients.ValkeyConfig{
			Address:  settings.ValkeyAddress,
			Password: settings.ValkeyPassword,
			TLS:      settings.ValkeyTLS,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, vc.Close)
		opts = append(opts, ingest.WithDeduplicator(vc))
	}
	if settings.KafkaBroker != "" {
		producer, err := kafka_client.NewProducer(kafka_client.KafkaConfig{
			Broker: settings.KafkaBroker,
			Topic:  settings.KafkaTopic,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, producer.Close)
		opts = append(opts, ingest.WithPublisher(producer))
	}

	a.ingest = ingest.NewService(pipeline, a.store, opts...)
	return nil
}

func validated(settings config.Settings) error {
	if err := settings.Validate(); err != nil {
		return errors.Join(errors.New("invalid configuration"), err)
	}
	return nil
}
