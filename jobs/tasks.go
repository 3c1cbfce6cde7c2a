package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup pre-populates the catalog snapshot cache.
	TaskCatalogWarmup = "catalog:warmup"
	// TaskMediaSweep removes uploaded images no listing references anymore.
	TaskMediaSweep = "media:sweep"
)

// CatalogWarmupPayload parameterises a warmup run.
type CatalogWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewCatalogWarmupTask constructs an Asynq task for catalog warmup.
func NewCatalogWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(CatalogWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}

// MediaSweepPayload parameterises an orphaned-media sweep.
type MediaSweepPayload struct {
	// MinAgeMinutes guards freshly uploaded files whose listing row may not
	// be committed yet.
	MinAgeMinutes int `json:"min_age_minutes"`
}

// NewMediaSweepTask constructs an Asynq task for the media sweep.
func NewMediaSweepTask(minAgeMinutes int) (*asynq.Task, error) {
	data, err := json.Marshal(MediaSweepPayload{MinAgeMinutes: minAgeMinutes})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMediaSweep, data), nil
}
