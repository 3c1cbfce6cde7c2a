package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/tradepost/tradepost/internal/categories"
	jobmetrics "github.com/tradepost/tradepost/internal/jobs"
	"github.com/tradepost/tradepost/internal/listings"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// CatalogWarmupJob refreshes the catalog snapshot cache so the first search
// after a deploy or cache flush does not pay the full join query.
type CatalogWarmupJob struct {
	Listings   *listings.Service
	Categories *categories.Service
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewCatalogWarmupJob wires dependencies for the warmup handler.
func NewCatalogWarmupJob(listingsSvc *listings.Service, categoriesSvc *categories.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogWarmupJob {
	return &CatalogWarmupJob{
		Listings:   listingsSvc,
		Categories: categoriesSvc,
		Logger:     logger,
		Metrics:    metrics,
	}
}

// Handle processes catalog warmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Listings == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCatalogWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}
	logger.Info("starting catalog warmup")

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var warmed int
	var categoryCount int
	g, gctx := errgroup.WithContext(warmCtx)
	g.Go(func() error {
		n, err := j.Listings.WarmCatalog(gctx)
		warmed = n
		return err
	})
	g.Go(func() error {
		if j.Categories == nil {
			return nil
		}
		cats, err := j.Categories.List(gctx)
		categoryCount = len(cats)
		return err
	})
	if err := g.Wait(); err != nil {
		resultErr = err
		logger.Error("catalog warmup", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed catalog warmup",
		slog.Int("listings", warmed),
		slog.Int("categories", categoryCount))
	return resultErr
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCatalogWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCatalogWarmup))
}

func (j *CatalogWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
