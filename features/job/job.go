package job

import (
	"time"
)

// Job is one ledger row: a listing the pipeline could not enrich.
type Job struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	WorkerID  int       `json:"worker_id"`
	SourceID  string    `json:"source_id"`
	Stage     string    `json:"stage"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
}
