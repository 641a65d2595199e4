package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"mediaTracker/tracker/models"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresArchive keeps a copy of every task that reached a terminal status,
// for the dashboard's report views.
type PostgresArchive struct {
	db execer
}

func NewPostgresArchive(db execer) *PostgresArchive {
	return &PostgresArchive{db: db}
}

func (a *PostgresArchive) Name() string { return "postgres" }

func (a *PostgresArchive) Handle(ctx context.Context, change Change) error {
	if !change.Current.Status.IsTerminal() || !change.StatusChanged() {
		return nil
	}
	return a.ArchiveTask(ctx, change.Current)
}

func (a *PostgresArchive) ArchiveTask(ctx context.Context, task models.GenerationTask) error {
	query := `
		INSERT INTO generation_task_archive
			(id, task_type, status, service_id, prompt, error_message, processing_time_seconds, created_at, updated_at, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			processing_time_seconds = EXCLUDED.processing_time_seconds,
			updated_at = EXCLUDED.updated_at,
			archived_at = NOW()
	`

	_, err := a.db.Exec(ctx, query,
		task.ID,
		string(task.TaskType),
		string(task.Status),
		task.ServiceID,
		task.Input.Prompt,
		task.ErrorMessage,
		task.ProcessingTimeSeconds,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}
