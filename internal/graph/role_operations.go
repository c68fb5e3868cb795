package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"reqgraph/internal/model"
)

// UpsertRole merges a Role node under an application, keyed by role name
// within that application
func (r *Repository) UpsertRole(ctx context.Context, nameKey string, role model.Role) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:Application {name_key: $nameKey})
		MERGE (a)-[:HAS_ROLE]->(ro:Role {name: $name})
		ON CREATE SET ro.id = $id, ro.created_at = datetime($now)
		SET ro.description = $description,
		    ro.updated_at = datetime($now)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"nameKey":     nameKey,
		"name":        role.Name,
		"id":          uuid.NewString(),
		"description": role.Description,
		"now":         time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert role %s: %w", role.Name, err)
	}
	return nil
}
