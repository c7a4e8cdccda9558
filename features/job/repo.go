package job

import (
	"context"
	"database/sql"
)

type Repository interface {
	Save(ctx context.Context, job *Job) error
	Count(ctx context.Context, runID string) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, job *Job) error {
	query := `INSERT INTO failed_enrichments (run_id, worker_id, source_id, stage, error) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, job.RunID, job.WorkerID, job.SourceID, job.Stage, job.Error).Scan(&job.ID, &job.CreatedAt)
}

func (r *PostgresRepo) Count(ctx context.Context, runID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM failed_enrichments WHERE run_id = $1`
	err := r.db.QueryRowContext(ctx, query, runID).Scan(&count)
	return count, err
}
