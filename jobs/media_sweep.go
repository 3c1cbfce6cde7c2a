package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/tradepost/tradepost/internal/jobs"
)

// MediaSweepJob deletes uploaded images that no listing references anymore.
// Replacing or deleting a listing image removes the old file inline; the
// sweep catches files orphaned by crashes between the upload and the row
// update.
type MediaSweepJob struct {
	Pool     *pgxpool.Pool
	MediaDir string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewMediaSweepJob wires dependencies for the sweep handler.
func NewMediaSweepJob(pool *pgxpool.Pool, mediaDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *MediaSweepJob {
	return &MediaSweepJob{Pool: pool, MediaDir: mediaDir, Logger: logger, Metrics: metrics}
}

// Handle processes media sweep tasks.
func (j *MediaSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil || j.MediaDir == "" {
		return errors.New("media sweep: handler not configured")
	}
	var payload MediaSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	minAge := time.Duration(payload.MinAgeMinutes) * time.Minute
	if minAge <= 0 {
		minAge = time.Hour
	}

	tracker := j.metrics().Track(TaskMediaSweep)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	referenced, err := j.referencedImages(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load referenced images", slog.Any("error", err))
		return resultErr
	}

	entries, err := os.ReadDir(j.MediaDir)
	if err != nil {
		resultErr = err
		logger.Error("read media dir", slog.Any("error", err))
		return resultErr
	}

	cutoff := time.Now().Add(-minAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if referenced[name] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.MediaDir, name)); err != nil {
			logger.Warn("remove orphaned image", slog.String("file", name), slog.Any("error", err))
			continue
		}
		removed++
	}

	logger.Info("completed media sweep",
		slog.Int("referenced", len(referenced)),
		slog.Int("removed", removed))
	return resultErr
}

func (j *MediaSweepJob) referencedImages(ctx context.Context) (map[string]bool, error) {
	rows, err := j.Pool.Query(ctx, `SELECT image FROM listings WHERE image IS NOT NULL AND image <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referenced := make(map[string]bool)
	for rows.Next() {
		var image string
		if err := rows.Scan(&image); err != nil {
			return nil, err
		}
		referenced[filepath.Base(image)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return referenced, nil
}

func (j *MediaSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMediaSweep))
	}
	return slog.Default().With(slog.String("job", TaskMediaSweep))
}

func (j *MediaSweepJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
