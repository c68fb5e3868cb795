package model

import (
	"strings"
	"time"
)

// Relationship types between two requirements
const (
	RelDependsOn     = "DEPENDS_ON"
	RelConflictsWith = "CONFLICTS_WITH"
	RelExtends       = "EXTENDS"
	RelRelatedTo     = "RELATED_TO"
)

// ValidRelationshipTypes is the closed set of requirement-to-requirement edge types
var ValidRelationshipTypes = map[string]bool{
	RelDependsOn:     true,
	RelConflictsWith: true,
	RelExtends:       true,
	RelRelatedTo:     true,
}

// Job/sync outcome statuses
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Requirement is a single extracted requirement record
type Requirement struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Status      string   `json:"status,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Array sub-fields, decomposed into graph nodes on sync
	Risks        []string `json:"risks,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	Assumptions  []string `json:"assumptions,omitempty"`
	Stakeholders []string `json:"stakeholders,omitempty"`

	// Store-managed fields
	Version   string    `json:"version,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Role represents an actor/role extracted from the document
type Role struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Relationship is a typed directed edge between two requirement identifiers
type Relationship struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
}

// ChunkExtraction is the decoded record set for one chunk
type ChunkExtraction struct {
	Index         int            `json:"index"`
	Requirements  []Requirement  `json:"requirements"`
	Roles         []Role         `json:"roles"`
	Relationships []Relationship `json:"relationships"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// ExtractionGraph is the unified, deduplicated result of all chunks
type ExtractionGraph struct {
	ProjectName   string         `json:"project_name"`
	Requirements  []Requirement  `json:"requirements"`
	Roles         []Role         `json:"roles"`
	Relationships []Relationship `json:"relationships"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// RecordError is a per-record failure collected during sync
type RecordError struct {
	RequirementID string `json:"requirement_id"`
	Stage         string `json:"stage"` // requirement, relationship, role
	Message       string `json:"message"`
}

// SyncReport is the outcome of one graph synchronization pass
type SyncReport struct {
	ProjectName          string        `json:"project_name"`
	Created              int           `json:"created"`
	Updated              int           `json:"updated"`
	RolesLinked          int           `json:"roles_linked"`
	RelationshipsLinked  int           `json:"relationships_linked"`
	RelationshipsDropped int           `json:"relationships_dropped"`
	Errors               []RecordError `json:"errors,omitempty"`
	Status               string        `json:"status"`
}

// Succeeded returns the number of requirements that persisted
func (r *SyncReport) Succeeded() int {
	return r.Created + r.Updated
}

// Resolve computes the report status from per-record outcomes:
// completed when nothing failed, partial when at least one requirement
// persisted despite failures, failed otherwise.
func (r *SyncReport) Resolve() {
	switch {
	case len(r.Errors) == 0:
		r.Status = StatusCompleted
	case r.Succeeded() > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
}

// SweepReport is the outcome of one deduplication sweep
type SweepReport struct {
	GroupsMerged      int `json:"groups_merged"`
	EdgesRedirected   int `json:"edges_redirected"`
	DuplicatesDeleted int `json:"duplicates_deleted"`
	OrphansDeleted    int `json:"orphans_deleted"`
}

// Empty reports whether the sweep changed nothing
func (r *SweepReport) Empty() bool {
	return r.GroupsMerged == 0 && r.EdgesRedirected == 0 &&
		r.DuplicatesDeleted == 0 && r.OrphansDeleted == 0
}

// NormalizeName lowercases and whitespace-collapses a project name into
// the merge key used for Application identity. "Shop" and "shop" (and
// " shop  ") resolve to the same key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
