// Package progress turns task status and elapsed time into a display
// percentage. Nothing here is stored; every call is evaluated from scratch.
package progress

import (
	"math"
	"time"

	"mediaTracker/tracker/models"
)

// ProcessingCap is the highest value reported while a task is still
// processing. 100 is reserved for the terminal transition.
const ProcessingCap = 95

type Key struct {
	Type      models.TaskType
	ServiceID int
}

// DefaultDurations is a hand-tuned approximation of how long each generation
// service takes. It is not fed back from observed processing times.
var DefaultDurations = map[Key]time.Duration{
	{models.TaskTypeImage, 1}: 60 * time.Second,
	{models.TaskTypeImage, 2}: 60 * time.Second,
	{models.TaskTypeVideo, 1}: 210 * time.Second,
	{models.TaskTypeVideo, 2}: 270 * time.Second,
	{models.TaskTypeVideo, 3}: 270 * time.Second,
}

var TypeDefaults = map[models.TaskType]time.Duration{
	models.TaskTypeImage: 60 * time.Second,
	models.TaskTypeVideo: 270 * time.Second,
}

type Estimator struct {
	durations map[Key]time.Duration
}

var Default = NewEstimator(DefaultDurations)

func NewEstimator(durations map[Key]time.Duration) *Estimator {
	return &Estimator{durations: durations}
}

func (e *Estimator) EstimatedTotal(typ models.TaskType, serviceID int) time.Duration {
	if d, ok := e.durations[Key{typ, serviceID}]; ok && d > 0 {
		return d
	}
	if d, ok := TypeDefaults[typ]; ok {
		return d
	}
	return TypeDefaults[models.TaskTypeVideo]
}

func (e *Estimator) Estimate(task models.GenerationTask, now time.Time) int {
	switch task.Status {
	case models.StatusCompleted, models.StatusFailed:
		return 100
	case models.StatusProcessing:
	default:
		return 0
	}

	elapsed := now.Sub(task.CreatedAt)
	if elapsed <= 0 {
		return 0
	}

	total := e.EstimatedTotal(task.TaskType, task.ServiceID)
	percent := int(math.Floor(100 * elapsed.Seconds() / total.Seconds()))
	return min(ProcessingCap, percent)
}

func Estimate(task models.GenerationTask, now time.Time) int {
	return Default.Estimate(task, now)
}

// ShowsBar reports whether a progress bar is displayed for the status.
// Failed tasks are terminal but show their error instead.
func ShowsBar(status models.TaskStatus) bool {
	return status == models.StatusProcessing || status == models.StatusCompleted
}
