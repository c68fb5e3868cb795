package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"reqgraph/internal/model"
)

// Store persists jobs as ExtractionJob nodes so status survives restarts
type Store struct {
	driver neo4j.DriverWithContext
}

// NewStore creates a graph-backed job registry
func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

func (s *Store) Put(ctx context.Context, job *ExtractionJob) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	var result any
	if job.Result != nil {
		payload, err := json.Marshal(job.Result)
		if err != nil {
			return fmt.Errorf("failed to serialize job result: %w", err)
		}
		result = string(payload)
	}

	query := `
		MERGE (j:ExtractionJob {id: $id})
		SET j.document_path = $documentPath,
		    j.project_name = $projectName,
		    j.model = $model,
		    j.status = $status,
		    j.error = $error,
		    j.submitted_at = datetime($submittedAt),
		    j.started_at = CASE WHEN $startedAt IS NULL THEN null ELSE datetime($startedAt) END,
		    j.finished_at = CASE WHEN $finishedAt IS NULL THEN null ELSE datetime($finishedAt) END,
		    j.result = $result
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"id":           job.ID,
		"documentPath": job.DocumentPath,
		"projectName":  job.ProjectName,
		"model":        job.Model,
		"status":       job.Status,
		"error":        job.Error,
		"submittedAt":  job.SubmittedAt.UTC().Format(time.RFC3339Nano),
		"startedAt":    optionalTime(job.StartedAt),
		"finishedAt":   optionalTime(job.FinishedAt),
		"result":       result,
	})
	if err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*ExtractionJob, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (j:ExtractionJob {id: $id})
		RETURN j
	`, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job %s: %w", id, err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, ErrJobNotFound{ID: id}
	}

	node, ok := result.Record().Values[0].(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected record shape for job %s", id)
	}
	return jobFromProps(node.Props)
}

func (s *Store) List(ctx context.Context, limit int) ([]*ExtractionJob, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit <= 0 {
		limit = 50
	}
	result, err := session.Run(ctx, `
		MATCH (j:ExtractionJob)
		RETURN j
		ORDER BY j.submitted_at DESC
		LIMIT $limit
	`, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	var out []*ExtractionJob
	for result.Next(ctx) {
		node, ok := result.Record().Values[0].(neo4j.Node)
		if !ok {
			continue
		}
		job, err := jobFromProps(node.Props)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, result.Err()
}

func jobFromProps(props map[string]interface{}) (*ExtractionJob, error) {
	job := &ExtractionJob{
		ID:           propString(props, "id"),
		DocumentPath: propString(props, "document_path"),
		ProjectName:  propString(props, "project_name"),
		Model:        propString(props, "model"),
		Status:       propString(props, "status"),
		Error:        propString(props, "error"),
		SubmittedAt:  propTime(props, "submitted_at"),
		StartedAt:    propTime(props, "started_at"),
		FinishedAt:   propTime(props, "finished_at"),
	}
	if raw := propString(props, "result"); raw != "" {
		var report model.SyncReport
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("failed to decode result of job %s: %w", job.ID, err)
		}
		job.Result = &report
	}
	return job, nil
}

func propString(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func propTime(props map[string]interface{}, key string) time.Time {
	if v, ok := props[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func optionalTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
