package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"reqgraph/internal/model"
)

// UpsertApplication resolves or creates the Application node for a
// project. Identity is the case-insensitive normalized name, so
// re-extraction under "Shop" and "shop" lands on the same node. Returns
// the application's stable id.
func (r *Repository) UpsertApplication(ctx context.Context, name string) (string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (a:Application {name_key: $nameKey})
		ON CREATE SET a.id = $id,
		              a.created_at = datetime($now)
		SET a.name = $name,
		    a.updated_at = datetime($now)
		RETURN a.id AS id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"nameKey": model.NormalizeName(name),
		"id":      uuid.NewString(),
		"name":    name,
		"now":     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert application: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve application node: %w", err)
	}

	appID := getString(record, "id", "")
	r.logger.Debug("Application resolved",
		zap.String("name", name),
		zap.String("app_id", appID),
	)
	return appID, nil
}
