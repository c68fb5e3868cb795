// Package pipeline runs a full extraction pass for one document: read,
// chunk, extract, merge, synchronize.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"reqgraph/internal/chunker"
	"reqgraph/internal/jobs"
	"reqgraph/internal/merge"
	"reqgraph/internal/model"
	"reqgraph/pkg/logger"
)

// Source reads document text from a path
type Source interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Extractor turns chunks into per-chunk record sets
type Extractor interface {
	ExtractAll(ctx context.Context, chunks []string, modelOverride string) ([]model.ChunkExtraction, error)
}

// Store synchronizes a unified extraction graph
type Store interface {
	SyncGraph(ctx context.Context, projectName string, g *model.ExtractionGraph) (*model.SyncReport, error)
}

// Options sets the chunking parameters
type Options struct {
	MaxChunkSize int
	ChunkOverlap int
}

// Pipeline wires the stages together. Every stage is keyed or upserting,
// so a pass that dies halfway can simply be re-run from the top.
type Pipeline struct {
	source    Source
	extractor Extractor
	store     Store
	maxSize   int
	overlap   int
	logger    *zap.Logger
}

// New creates a pipeline over the given collaborators
func New(source Source, extractor Extractor, store Store, opts Options) *Pipeline {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = chunker.DefaultMaxSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = chunker.DefaultOverlap
	}
	return &Pipeline{
		source:    source,
		extractor: extractor,
		store:     store,
		maxSize:   opts.MaxChunkSize,
		overlap:   opts.ChunkOverlap,
		logger:    logger.Get(),
	}
}

// Run executes one extraction job end to end and returns its report
func (p *Pipeline) Run(ctx context.Context, job *jobs.ExtractionJob) (*model.SyncReport, error) {
	text, err := p.source.Extract(ctx, job.DocumentPath)
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.Split(text, p.maxSize, p.overlap)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Document chunked",
		zap.String("job_id", job.ID),
		zap.String("document", job.DocumentPath),
		zap.Int("chars", len(text)),
		zap.Int("chunks", len(chunks)),
	)

	extractions, err := p.extractor.ExtractAll(ctx, chunks, job.Model)
	if err != nil {
		return nil, err
	}

	graph := merge.Merge(job.ProjectName, extractions)
	for _, w := range graph.Warnings {
		p.logger.Warn("Merge warning",
			zap.String("job_id", job.ID),
			zap.String("warning", w),
		)
	}

	report, err := p.store.SyncGraph(ctx, job.ProjectName, graph)
	if err != nil {
		return report, err
	}

	p.logger.Info("Extraction pass finished",
		zap.String("job_id", job.ID),
		zap.String("project", job.ProjectName),
		zap.String("status", report.Status),
		zap.Int("requirements", report.Created+report.Updated),
	)
	return report, nil
}
