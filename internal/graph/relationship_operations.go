package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"reqgraph/internal/model"
)

// LinkRelationship creates a typed edge between two requirements. The
// edge is only persisted when both endpoints exist, whether written in
// this batch or stored earlier; otherwise it reports false so the caller
// can drop it with a warning. Dangling references are never fabricated.
func (r *Repository) LinkRelationship(ctx context.Context, rel model.Relationship) (bool, error) {
	if !model.ValidRelationshipTypes[rel.Type] {
		return false, fmt.Errorf("invalid relationship type %q", rel.Type)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	linked, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		check, err := tx.Run(ctx, `
			MATCH (a:Requirement {id: $source})
			MATCH (b:Requirement {id: $target})
			RETURN a.id AS id
		`, map[string]interface{}{
			"source": rel.SourceID,
			"target": rel.TargetID,
		})
		if err != nil {
			return false, err
		}
		if !check.Next(ctx) {
			return false, check.Err()
		}

		// rel.Type is validated against the closed set above
		query := fmt.Sprintf(`
			MATCH (a:Requirement {id: $source})
			MATCH (b:Requirement {id: $target})
			MERGE (a)-[:%s]->(b)
		`, rel.Type)
		if _, err := tx.Run(ctx, query, map[string]interface{}{
			"source": rel.SourceID,
			"target": rel.TargetID,
		}); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to link %s -[%s]-> %s: %w", rel.SourceID, rel.Type, rel.TargetID, err)
	}
	return linked.(bool), nil
}
