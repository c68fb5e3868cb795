package jobs

import "context"

// Repository is the durable keyed registry behind the queue. Lookups by
// id must survive process restarts when backed by the graph store; the
// in-memory implementation covers tests and single-node development.
type Repository interface {
	// Get returns the job for an id, or ErrJobNotFound
	Get(ctx context.Context, id string) (*ExtractionJob, error)
	// Put stores or replaces the job keyed by its id
	Put(ctx context.Context, job *ExtractionJob) error
	// List returns the most recently submitted jobs, newest first
	List(ctx context.Context, limit int) ([]*ExtractionJob, error)
}
