package graph

import (
	"context"

	"go.uber.org/zap"

	"reqgraph/internal/model"
	apperrors "reqgraph/pkg/errors"
)

// SyncGraph upserts a unified extraction graph into the store,
// transactionally per record. A failure while writing one requirement is
// recorded and does not abort the rest of the batch; the report carries
// per-identifier outcomes. Only an unreachable store before any write
// fails the whole pass.
func (r *Repository) SyncGraph(ctx context.Context, projectName string, g *model.ExtractionGraph) (*model.SyncReport, error) {
	nameKey := model.NormalizeName(projectName)

	// serialize concurrent syncs of the same project
	lock := r.projectLock(nameKey)
	lock.Lock()
	defer lock.Unlock()

	report := &model.SyncReport{ProjectName: projectName}

	if _, err := r.UpsertApplication(ctx, projectName); err != nil {
		report.Status = model.StatusFailed
		return report, apperrors.NewServiceUnavailable("graph store", err)
	}

	for _, req := range g.Requirements {
		created, _, err := r.UpsertRequirement(ctx, nameKey, req)
		if err != nil {
			r.logger.Warn("Requirement write failed",
				zap.String("id", req.ID),
				zap.Error(err),
			)
			report.Errors = append(report.Errors, model.RecordError{
				RequirementID: req.ID,
				Stage:         "requirement",
				Message:       err.Error(),
			})
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	for _, role := range g.Roles {
		if err := r.UpsertRole(ctx, nameKey, role); err != nil {
			r.logger.Warn("Role write failed",
				zap.String("role", role.Name),
				zap.Error(err),
			)
			report.Errors = append(report.Errors, model.RecordError{
				RequirementID: role.Name,
				Stage:         "role",
				Message:       err.Error(),
			})
			continue
		}
		report.RolesLinked++
	}

	for _, rel := range g.Relationships {
		linked, err := r.LinkRelationship(ctx, rel)
		if err != nil {
			report.Errors = append(report.Errors, model.RecordError{
				RequirementID: rel.SourceID,
				Stage:         "relationship",
				Message:       err.Error(),
			})
			continue
		}
		if !linked {
			r.logger.Warn("Relationship references unknown requirement, dropped",
				zap.String("source", rel.SourceID),
				zap.String("target", rel.TargetID),
				zap.String("type", rel.Type),
			)
			report.RelationshipsDropped++
			continue
		}
		report.RelationshipsLinked++
	}

	report.Resolve()
	r.logger.Info("Graph sync finished",
		zap.String("project", projectName),
		zap.String("status", report.Status),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("relationships_linked", report.RelationshipsLinked),
		zap.Int("relationships_dropped", report.RelationshipsDropped),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}
