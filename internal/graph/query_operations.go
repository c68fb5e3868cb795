package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"reqgraph/internal/model"
)

// ProjectRequirements reads back all requirements stored for a project,
// with auxiliary nodes re-collected into their array fields
func (r *Repository) ProjectRequirements(ctx context.Context, projectName string) ([]model.Requirement, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (a:Application {name_key: $nameKey})-[:HAS_REQUIREMENT]->(r:Requirement)
		OPTIONAL MATCH (r)-[:HAS_RISK]->(risk:Risk)
		OPTIONAL MATCH (r)-[:HAS_CONSTRAINT]->(con:Constraint)
		OPTIONAL MATCH (r)-[:HAS_ASSUMPTION]->(asm:Assumption)
		OPTIONAL MATCH (r)-[:STAKEHOLDER]->(p:Person)
		RETURN r.id AS id,
		       r.name AS name,
		       r.description AS description,
		       r.type AS type,
		       r.priority AS priority,
		       r.status AS status,
		       r.category AS category,
		       r.tags AS tags,
		       r.version AS version,
		       r.created_at AS created_at,
		       r.updated_at AS updated_at,
		       collect(DISTINCT risk.description) AS risks,
		       collect(DISTINCT con.description) AS constraints,
		       collect(DISTINCT asm.description) AS assumptions,
		       collect(DISTINCT p.name) AS stakeholders
		ORDER BY r.id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"nameKey": model.NormalizeName(projectName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query project requirements: %w", err)
	}

	var reqs []model.Requirement
	for result.Next(ctx) {
		record := result.Record()
		reqs = append(reqs, model.Requirement{
			ID:           getString(record, "id", ""),
			Name:         getString(record, "name", ""),
			Description:  getString(record, "description", ""),
			Type:         getString(record, "type", ""),
			Priority:     getString(record, "priority", ""),
			Status:       getString(record, "status", ""),
			Category:     getString(record, "category", ""),
			Tags:         getStringSlice(record, "tags"),
			Version:      getString(record, "version", ""),
			CreatedAt:    getTime(record, "created_at"),
			UpdatedAt:    getTime(record, "updated_at"),
			Risks:        getStringSlice(record, "risks"),
			Constraints:  getStringSlice(record, "constraints"),
			Assumptions:  getStringSlice(record, "assumptions"),
			Stakeholders: getStringSlice(record, "stakeholders"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read project requirements: %w", err)
	}
	return reqs, nil
}

// CountAuxiliaryNodes returns per-label node counts for the auxiliary
// types the sweeper manages. Used by maintenance reporting and tests.
func (r *Repository) CountAuxiliaryNodes(ctx context.Context) (map[string]int, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	counts := make(map[string]int, len(auxEdges))
	for label := range auxEdges {
		query := fmt.Sprintf(`MATCH (n:%s) RETURN count(n) AS c`, label)
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			counts[label] = int(getInt64(result.Record(), "c"))
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
	}
	return counts, nil
}
