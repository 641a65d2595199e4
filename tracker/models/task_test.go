package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		want     bool
	}{
		{StatusPending, StatusPending, true},
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCompleted, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusPending, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusCompleted, false},
		{StatusFailed, StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTaskStatus_ActiveAndTerminal(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusProcessing.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
}

func TestParseEnums(t *testing.T) {
	typ, err := ParseTaskType("video")
	require.NoError(t, err)
	assert.Equal(t, TaskTypeVideo, typ)

	_, err = ParseTaskType("audio")
	assert.Error(t, err)

	st, err := ParseTaskStatus("processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, st)

	_, err = ParseTaskStatus("queued")
	assert.Error(t, err)
}

func TestGenerationTask_Validate(t *testing.T) {
	task := GenerationTask{ID: "t1", TaskType: TaskTypeImage, Status: StatusPending}
	assert.NoError(t, task.Validate())

	task.ID = ""
	assert.Error(t, task.Validate())

	task.ID = "t1"
	task.Status = "unknown"
	assert.Error(t, task.Validate())
}

func TestMediaRefs_HasMedia(t *testing.T) {
	assert.False(t, MediaRefs{ThumbnailURL: "thumb.jpg"}.HasMedia())
	assert.True(t, MediaRefs{VideoURL: "https://cdn.example.com/v.mp4"}.HasMedia())
}
