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

// auxEdges maps each auxiliary node label to its edge type. Labels cannot
// be parameterized in Cypher; this closed set is the only source for the
// fmt.Sprintf'd queries below.
var auxEdges = map[string]string{
	"Risk":       "HAS_RISK",
	"Constraint": "HAS_CONSTRAINT",
	"Assumption": "HAS_ASSUMPTION",
}

// UpsertRequirement persists one requirement in a single write
// transaction. Create sets version "1.0"; update bumps the version by
// 0.1, refreshes updated_at and overwrites scalar fields, leaving
// created_at untouched. Array sub-fields are decomposed: this
// requirement's Risk/Constraint/Assumption nodes are recreated from the
// current extraction, while Person stakeholders are matched by name and
// reused. Returns whether the node was created and its resulting version.
func (r *Repository) UpsertRequirement(ctx context.Context, nameKey string, req model.Requirement) (bool, string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		created, version, err := r.writeRequirementNode(ctx, tx, req, now)
		if err != nil {
			return nil, err
		}
		if err := r.rebuildAuxNodes(ctx, tx, req, now); err != nil {
			return nil, err
		}
		if err := r.linkApplication(ctx, tx, nameKey, req.ID); err != nil {
			return nil, err
		}
		return []any{created, version}, nil
	})
	if err != nil {
		return false, "", fmt.Errorf("failed to upsert requirement %s: %w", req.ID, err)
	}

	pair := res.([]any)
	created, version := pair[0].(bool), pair[1].(string)
	r.logger.Debug("Requirement upserted",
		zap.String("id", req.ID),
		zap.Bool("created", created),
		zap.String("version", version),
	)
	return created, version, nil
}

// writeRequirementNode reads the stored version, computes the next one,
// and merges the node with all scalar fields overwritten
func (r *Repository) writeRequirementNode(ctx context.Context, tx neo4j.ManagedTransaction, req model.Requirement, now string) (bool, string, error) {
	result, err := tx.Run(ctx, `MATCH (r:Requirement {id: $id}) RETURN r.version AS version`,
		map[string]interface{}{"id": req.ID})
	if err != nil {
		return false, "", err
	}

	created := true
	version := model.InitialVersion
	if result.Next(ctx) {
		created = false
		stored := getString(result.Record(), "version", "")
		if !model.IsValidVersion(stored) {
			r.logger.Warn("Stored requirement has no parseable version, resetting",
				zap.String("id", req.ID),
				zap.String("stored", stored),
			)
		}
		version = model.BumpVersion(stored)
	}
	if err := result.Err(); err != nil {
		return false, "", err
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err = tx.Run(ctx, `
		MERGE (r:Requirement {id: $id})
		ON CREATE SET r.created_at = datetime($now)
		SET r.name = $name,
		    r.description = $description,
		    r.type = $type,
		    r.priority = $priority,
		    r.status = $status,
		    r.category = $category,
		    r.tags = $tags,
		    r.version = $version,
		    r.updated_at = datetime($now)
	`, map[string]interface{}{
		"id":          req.ID,
		"name":        req.Name,
		"description": req.Description,
		"type":        req.Type,
		"priority":    req.Priority,
		"status":      req.Status,
		"category":    req.Category,
		"tags":        tags,
		"version":     version,
		"now":         now,
	})
	if err != nil {
		return false, "", err
	}
	return created, version, nil
}

// rebuildAuxNodes deletes the requirement's auxiliary edges and their
// now-orphaned targets, then recreates them from the current extraction.
// Person nodes are never deleted; they are matched by name and relinked.
func (r *Repository) rebuildAuxNodes(ctx context.Context, tx neo4j.ManagedTransaction, req model.Requirement, now string) error {
	for label, edge := range auxEdges {
		query := fmt.Sprintf(`
			MATCH (r:Requirement {id: $id})-[e:%s]->(n:%s)
			DELETE e
			WITH n
			WHERE NOT (n)<-[:%s]-()
			DELETE n
		`, edge, label, edge)
		if _, err := tx.Run(ctx, query, map[string]interface{}{"id": req.ID}); err != nil {
			return err
		}
	}

	_, err := tx.Run(ctx, `
		MATCH (r:Requirement {id: $id})-[e:STAKEHOLDER]->(:Person)
		DELETE e
	`, map[string]interface{}{"id": req.ID})
	if err != nil {
		return err
	}

	for label, values := range map[string][]string{
		"Risk":       req.Risks,
		"Constraint": req.Constraints,
		"Assumption": req.Assumptions,
	} {
		edge := auxEdges[label]
		for _, description := range values {
			query := fmt.Sprintf(`
				MATCH (r:Requirement {id: $id})
				CREATE (n:%s {id: $nodeID, description: $description, created_at: datetime($now)})
				CREATE (r)-[:%s]->(n)
			`, label, edge)
			_, err := tx.Run(ctx, query, map[string]interface{}{
				"id":          req.ID,
				"nodeID":      uuid.NewString(),
				"description": description,
				"now":         now,
			})
			if err != nil {
				return err
			}
		}
	}

	for _, name := range req.Stakeholders {
		_, err := tx.Run(ctx, `
			MATCH (r:Requirement {id: $id})
			MERGE (p:Person {name: $name})
			ON CREATE SET p.id = $nodeID, p.created_at = datetime($now)
			MERGE (r)-[:STAKEHOLDER]->(p)
		`, map[string]interface{}{
			"id":     req.ID,
			"name":   name,
			"nodeID": uuid.NewString(),
			"now":    now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// linkApplication merges the idempotent Application -> Requirement edge
func (r *Repository) linkApplication(ctx context.Context, tx neo4j.ManagedTransaction, nameKey, reqID string) error {
	_, err := tx.Run(ctx, `
		MATCH (a:Application {name_key: $nameKey})
		MATCH (r:Requirement {id: $id})
		MERGE (a)-[:HAS_REQUIREMENT]->(r)
	`, map[string]interface{}{
		"nameKey": nameKey,
		"id":      reqID,
	})
	return err
}
