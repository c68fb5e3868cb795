// Package jobs tracks extraction jobs in a durable keyed registry and
// dispatches them to a worker pool.
package jobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"reqgraph/internal/model"
)

// ExtractionJob is one submitted extraction run over a single document
type ExtractionJob struct {
	ID           string            `json:"id"`
	DocumentPath string            `json:"document_path"`
	ProjectName  string            `json:"project_name"`
	Model        string            `json:"model,omitempty"`
	Status       string            `json:"status"`
	Error        string            `json:"error,omitempty"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	StartedAt    time.Time         `json:"started_at,omitempty"`
	FinishedAt   time.Time         `json:"finished_at,omitempty"`
	Result       *model.SyncReport `json:"result,omitempty"`
}

// NewExtractionJob creates a pending job with a fresh identifier
func NewExtractionJob(documentPath, projectName, modelID string) *ExtractionJob {
	return &ExtractionJob{
		ID:           uuid.NewString(),
		DocumentPath: documentPath,
		ProjectName:  projectName,
		Model:        modelID,
		Status:       model.StatusPending,
		SubmittedAt:  time.Now().UTC(),
	}
}

// Finished reports whether the job has reached a terminal status
func (j *ExtractionJob) Finished() bool {
	switch j.Status {
	case model.StatusCompleted, model.StatusPartial, model.StatusFailed:
		return true
	}
	return false
}

// clone returns a copy safe to hand across goroutines
func (j *ExtractionJob) clone() *ExtractionJob {
	c := *j
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}

// ErrJobNotFound is returned when a job id has no registry entry
type ErrJobNotFound struct {
	ID string
}

func (e ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.ID)
}
