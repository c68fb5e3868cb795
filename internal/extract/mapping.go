package extract

import (
	"fmt"
	"strconv"
	"strings"

	"reqgraph/internal/model"
	"reqgraph/internal/tabular"
)

// mapDocument converts decoded tabular blocks into typed chunk records.
// Rows without a usable name are dropped with a warning; identifiers may
// be empty here, the merger autogenerates them.
func mapDocument(doc *tabular.Document, index int) *model.ChunkExtraction {
	res := &model.ChunkExtraction{Index: index, Warnings: doc.Warnings}

	if blk := doc.Block("requirements"); blk != nil {
		for i, row := range blk.Rows {
			req := model.Requirement{
				ID:           fieldString(row, "id"),
				Name:         fieldString(row, "name"),
				Description:  fieldString(row, "description"),
				Type:         fieldString(row, "type"),
				Priority:     fieldString(row, "priority"),
				Status:       fieldString(row, "status"),
				Category:     fieldString(row, "category"),
				Tags:         fieldList(row, "tags"),
				Risks:        fieldList(row, "risks"),
				Constraints:  fieldList(row, "constraints"),
				Assumptions:  fieldList(row, "assumptions"),
				Stakeholders: fieldList(row, "stakeholders"),
			}
			if req.Name == "" && req.Description == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("requirements row %d has neither name nor description, dropped", i))
				continue
			}
			if req.Name == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("requirements row %d has no name, dropped", i))
				continue
			}
			res.Requirements = append(res.Requirements, req)
		}
	}

	if blk := doc.Block("roles"); blk != nil {
		for i, row := range blk.Rows {
			role := model.Role{
				Name:        fieldString(row, "name"),
				Description: fieldString(row, "description"),
			}
			if role.Name == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("roles row %d has no name, dropped", i))
				continue
			}
			res.Roles = append(res.Roles, role)
		}
	}

	if blk := doc.Block("relationships"); blk != nil {
		for i, row := range blk.Rows {
			rel := model.Relationship{
				SourceID: fieldString(row, "source"),
				TargetID: fieldString(row, "target"),
				Type:     strings.ToUpper(fieldString(row, "type")),
			}
			if rel.SourceID == "" || rel.TargetID == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("relationships row %d is missing an endpoint, dropped", i))
				continue
			}
			if !model.ValidRelationshipTypes[rel.Type] {
				res.Warnings = append(res.Warnings, fmt.Sprintf("relationships row %d has unknown type %q, dropped", i, rel.Type))
				continue
			}
			res.Relationships = append(res.Relationships, rel)
		}
	}

	return res
}

// fieldString renders a possibly-coerced cell value back to text
func fieldString(row tabular.Record, field string) string {
	switch v := row[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// fieldList splits a pipe-delimited cell into trimmed non-empty values
func fieldList(row tabular.Record, field string) []string {
	raw := fieldString(row, field)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
