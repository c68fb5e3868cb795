// Package graph persists extraction results into Neo4j and keeps the
// long-lived graph invariants: unique merge keys, monotonic requirement
// versions, and relationship integrity.
package graph

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"reqgraph/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// projectLock returns the mutex serializing writes for one normalized
// project name. MERGE is atomic per node, but the requirement version
// read-modify-write is not, so concurrent re-extractions of the same
// project must not interleave.
func (r *Repository) projectLock(nameKey string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[nameKey]
	if !ok {
		l = &sync.Mutex{}
		r.locks[nameKey] = l
	}
	return l
}
