package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaTracker/tracker/models"
)

type fakeExecer struct {
	calls [][]any
	err   error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestPostgresArchive_ArchivesTerminalTransitions(t *testing.T) {
	db := &fakeExecer{}
	archive := NewPostgresArchive(db)

	prev := newTask("t1", models.TaskTypeVideo, models.StatusProcessing)
	seconds := 70.0
	done := newTask("t1", models.TaskTypeVideo, models.StatusCompleted)
	done.ProcessingTimeSeconds = &seconds

	require.NoError(t, archive.Handle(context.Background(), Change{Previous: &prev, Current: done}))
	require.Len(t, db.calls, 1)
	assert.Equal(t, "t1", db.calls[0][0])
	assert.Equal(t, "completed", db.calls[0][2])
	assert.Equal(t, &seconds, db.calls[0][6])
}

func TestPostgresArchive_SkipsActiveAndRepeatedSnapshots(t *testing.T) {
	db := &fakeExecer{}
	archive := NewPostgresArchive(db)

	pending := newTask("t1", models.TaskTypeVideo, models.StatusPending)
	require.NoError(t, archive.Handle(context.Background(), Change{Current: pending}))

	done := newTask("t1", models.TaskTypeVideo, models.StatusFailed)
	require.NoError(t, archive.Handle(context.Background(), Change{Previous: &done, Current: done}))

	assert.Empty(t, db.calls)
}

func TestPostgresArchive_PropagatesErrors(t *testing.T) {
	db := &fakeExecer{err: errors.New("connection refused")}
	archive := NewPostgresArchive(db)

	err := archive.ArchiveTask(context.Background(), newTask("t1", models.TaskTypeImage, models.StatusFailed))
	assert.EqualError(t, err, "connection refused")
}
