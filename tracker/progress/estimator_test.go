package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mediaTracker/tracker/models"
)

var created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func task(typ models.TaskType, status models.TaskStatus, serviceID int) models.GenerationTask {
	return models.GenerationTask{
		ID:        "t1",
		TaskType:  typ,
		Status:    status,
		ServiceID: serviceID,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestEstimate_NonProcessing(t *testing.T) {
	now := created.Add(10 * time.Minute)

	assert.Equal(t, 0, Estimate(task(models.TaskTypeImage, models.StatusPending, 1), now))
	assert.Equal(t, 100, Estimate(task(models.TaskTypeImage, models.StatusCompleted, 1), now))
	assert.Equal(t, 100, Estimate(task(models.TaskTypeVideo, models.StatusFailed, 1), now))
	assert.Equal(t, 100, Estimate(task(models.TaskTypeVideo, models.StatusCompleted, 2), created))
}

func TestEstimate_Processing(t *testing.T) {
	tests := []struct {
		name    string
		typ     models.TaskType
		service int
		elapsed time.Duration
		want    int
	}{
		{"image halfway", models.TaskTypeImage, 1, 30 * time.Second, 50},
		{"image capped before done", models.TaskTypeImage, 1, 59 * time.Second, 95},
		{"video fast tier", models.TaskTypeVideo, 1, 105 * time.Second, 50},
		{"video slow tier", models.TaskTypeVideo, 2, 135 * time.Second, 50},
		{"unknown video service uses default", models.TaskTypeVideo, 42, 27 * time.Second, 10},
		{"unknown image service uses default", models.TaskTypeImage, 9, 6 * time.Second, 10},
		{"fractional floors down", models.TaskTypeVideo, 2, 100 * time.Second, 37},
		{"clock skew", models.TaskTypeImage, 1, -5 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(task(tt.typ, models.StatusProcessing, tt.service), created.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimate_ProcessingNeverReaches100(t *testing.T) {
	for _, typ := range []models.TaskType{models.TaskTypeImage, models.TaskTypeVideo} {
		for service := 0; service <= 4; service++ {
			for elapsed := time.Duration(0); elapsed <= 2*time.Hour; elapsed += 7 * time.Second {
				got := Estimate(task(typ, models.StatusProcessing, service), created.Add(elapsed))
				assert.LessOrEqual(t, got, ProcessingCap)
				assert.GreaterOrEqual(t, got, 0)
			}
		}
	}
}

func TestEstimate_ExampleScenario(t *testing.T) {
	tk := task(models.TaskTypeImage, models.StatusProcessing, 7)
	assert.Equal(t, 95, Estimate(tk, created.Add(65*time.Second)))

	tk.Status = models.StatusCompleted
	assert.Equal(t, 100, Estimate(tk, created.Add(70*time.Second)))
}

func TestEstimator_CustomTable(t *testing.T) {
	e := NewEstimator(map[Key]time.Duration{{models.TaskTypeVideo, 5}: 100 * time.Second})

	assert.Equal(t, 100*time.Second, e.EstimatedTotal(models.TaskTypeVideo, 5))
	assert.Equal(t, 270*time.Second, e.EstimatedTotal(models.TaskTypeVideo, 1))
	assert.Equal(t, 40, e.Estimate(task(models.TaskTypeVideo, models.StatusProcessing, 5), created.Add(40*time.Second)))
}

func TestShowsBar(t *testing.T) {
	assert.False(t, ShowsBar(models.StatusPending))
	assert.True(t, ShowsBar(models.StatusProcessing))
	assert.True(t, ShowsBar(models.StatusCompleted))
	assert.False(t, ShowsBar(models.StatusFailed))
}
