// Package merge combines ordered per-chunk record sets into one unified,
// deduplicated extraction graph. Chunk overlap makes the same requirement
// show up in adjacent chunks; the first occurrence wins and later ones
// are dropped.
package merge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reqgraph/internal/model"
	"reqgraph/pkg/logger"
)

// Merge concatenates chunk results in chunk order and deduplicates them.
// A requirement is a duplicate when its identifier matches an earlier one,
// or when identifiers differ but (name, description) match exactly. Every
// surviving requirement leaves with a non-empty identifier.
func Merge(projectName string, chunks []model.ChunkExtraction) *model.ExtractionGraph {
	log := logger.Get()
	out := &model.ExtractionGraph{ProjectName: projectName}

	seenID := make(map[string]bool)
	seenNameDesc := make(map[string]bool)
	seenRole := make(map[string]bool)
	seenRel := make(map[string]bool)

	for _, chunk := range chunks {
		out.Warnings = append(out.Warnings, chunk.Warnings...)

		for _, req := range chunk.Requirements {
			contentKey := req.Name + "\x00" + req.Description
			switch {
			case req.ID != "" && seenID[req.ID]:
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("duplicate requirement %s in chunk %d, first occurrence kept", req.ID, chunk.Index))
				continue
			case seenNameDesc[contentKey]:
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("requirement %q in chunk %d duplicates an earlier one by content, first occurrence kept", req.Name, chunk.Index))
				continue
			}

			if req.ID == "" {
				req.ID = generateID()
				log.Debug("assigned generated requirement id",
					zap.String("id", req.ID),
					zap.String("name", req.Name),
				)
			}
			seenID[req.ID] = true
			seenNameDesc[contentKey] = true
			out.Requirements = append(out.Requirements, req)
		}

		for _, role := range chunk.Roles {
			key := strings.ToLower(role.Name)
			if seenRole[key] {
				continue
			}
			seenRole[key] = true
			out.Roles = append(out.Roles, role)
		}

		for _, rel := range chunk.Relationships {
			key := rel.SourceID + "\x00" + rel.TargetID + "\x00" + rel.Type
			if seenRel[key] {
				continue
			}
			seenRel[key] = true
			out.Relationships = append(out.Relationships, rel)
		}
	}

	return out
}

// generateID returns a process-unique requirement identifier for records
// the LLM emitted without one
func generateID() string {
	return "REQ-" + strings.ToUpper(uuid.NewString()[:8])
}
