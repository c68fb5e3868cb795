package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"reqgraph/internal/model"
)

// SweepDuplicates collapses auxiliary nodes sharing identical description
// text. The synchronizer recreates Risk/Constraint/Assumption nodes on
// every requirement update, so repeated re-extraction accumulates
// duplicates; this maintenance pass redirects incoming edges to a
// deterministic keeper (earliest created, id as tiebreak), deletes the
// rest, and finally removes any auxiliary node left with no incoming
// edges. Running it twice over an unchanged graph changes nothing the
// second time.
func (r *Repository) SweepDuplicates(ctx context.Context) (*model.SweepReport, error) {
	report := &model.SweepReport{}

	for label, edge := range auxEdges {
		if err := r.sweepLabel(ctx, label, edge, report); err != nil {
			return report, fmt.Errorf("sweep of %s nodes failed: %w", label, err)
		}
	}

	for label := range auxEdges {
		deleted, err := r.deleteOrphans(ctx, label)
		if err != nil {
			return report, fmt.Errorf("orphan cleanup of %s nodes failed: %w", label, err)
		}
		report.OrphansDeleted += deleted
	}

	r.logger.Info("Deduplication sweep finished",
		zap.Int("groups_merged", report.GroupsMerged),
		zap.Int("edges_redirected", report.EdgesRedirected),
		zap.Int("duplicates_deleted", report.DuplicatesDeleted),
		zap.Int("orphans_deleted", report.OrphansDeleted),
	)
	return report, nil
}

// sweepLabel merges duplicate groups for one auxiliary label
func (r *Repository) sweepLabel(ctx context.Context, label, edge string, report *model.SweepReport) error {
	groups, err := r.duplicateGroups(ctx, label)
	if err != nil {
		return err
	}

	for _, ids := range groups {
		keeper, dups := ids[0], ids[1:]
		redirected, deleted, err := r.mergeGroup(ctx, label, edge, keeper, dups)
		if err != nil {
			return err
		}
		report.GroupsMerged++
		report.EdgesRedirected += redirected
		report.DuplicatesDeleted += deleted

		r.logger.Debug("Merged duplicate auxiliary nodes",
			zap.String("label", label),
			zap.String("keeper", keeper),
			zap.Int("duplicates", len(dups)),
		)
	}
	return nil
}

// duplicateGroups returns, per duplicated description, node ids ordered
// oldest first so the keeper choice is deterministic
func (r *Repository) duplicateGroups(ctx context.Context, label string) ([][]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (n:%s)
		WITH n ORDER BY n.created_at ASC, n.id ASC
		WITH n.description AS description, collect(n.id) AS ids
		WHERE size(ids) > 1
		RETURN ids
	`, label)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var groups [][]string
	for result.Next(ctx) {
		ids := getStringSlice(result.Record(), "ids")
		if len(ids) > 1 {
			groups = append(groups, ids)
		}
	}
	return groups, result.Err()
}

// mergeGroup redirects every incoming edge from the duplicates to the
// keeper, then deletes the duplicates
func (r *Repository) mergeGroup(ctx context.Context, label, edge, keeper string, dups []string) (int, int, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	res, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		redirectQuery := fmt.Sprintf(`
			MATCH (keeper:%s {id: $keeper})
			MATCH (src:Requirement)-[e:%s]->(dup:%s)
			WHERE dup.id IN $dups
			MERGE (src)-[:%s]->(keeper)
			DELETE e
			RETURN count(e) AS redirected
		`, label, edge, label, edge)
		redirectResult, err := tx.Run(ctx, redirectQuery, map[string]interface{}{
			"keeper": keeper,
			"dups":   dups,
		})
		if err != nil {
			return nil, err
		}
		redirected := int64(0)
		if redirectResult.Next(ctx) {
			redirected = getInt64(redirectResult.Record(), "redirected")
		}
		if err := redirectResult.Err(); err != nil {
			return nil, err
		}

		deleteQuery := fmt.Sprintf(`
			MATCH (dup:%s)
			WHERE dup.id IN $dups
			DETACH DELETE dup
			RETURN count(dup) AS deleted
		`, label)
		deleteResult, err := tx.Run(ctx, deleteQuery, map[string]interface{}{"dups": dups})
		if err != nil {
			return nil, err
		}
		deleted := int64(0)
		if deleteResult.Next(ctx) {
			deleted = getInt64(deleteResult.Record(), "deleted")
		}
		if err := deleteResult.Err(); err != nil {
			return nil, err
		}

		return []int64{redirected, deleted}, nil
	})
	if err != nil {
		return 0, 0, err
	}

	counts := res.([]int64)
	return int(counts[0]), int(counts[1]), nil
}

// deleteOrphans removes auxiliary nodes of one label with no incoming edges
func (r *Repository) deleteOrphans(ctx context.Context, label string) (int, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE NOT ()-->(n)
		DETACH DELETE n
		RETURN count(n) AS deleted
	`, label)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	deleted := int64(0)
	if result.Next(ctx) {
		deleted = getInt64(result.Record(), "deleted")
	}
	return int(deleted), result.Err()
}
