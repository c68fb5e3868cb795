package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqgraph/internal/jobs"
	"reqgraph/internal/model"
	apperrors "reqgraph/pkg/errors"
)

type fakeSource struct {
	text string
	err  error
}

func (f *fakeSource) Extract(ctx context.Context, path string) (string, error) {
	return f.text, f.err
}

type fakeExtractor struct {
	perChunk func(i int, chunk string) model.ChunkExtraction
	err      error
	chunks   []string
	model    string
}

func (f *fakeExtractor) ExtractAll(ctx context.Context, chunks []string, modelOverride string) ([]model.ChunkExtraction, error) {
	f.chunks = chunks
	f.model = modelOverride
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.ChunkExtraction, len(chunks))
	for i, c := range chunks {
		out[i] = f.perChunk(i, c)
	}
	return out, nil
}

type fakeStore struct {
	graph  *model.ExtractionGraph
	report *model.SyncReport
	err    error
}

func (f *fakeStore) SyncGraph(ctx context.Context, projectName string, g *model.ExtractionGraph) (*model.SyncReport, error) {
	f.graph = g
	return f.report, f.err
}

func TestPipeline_RunMergesChunksBeforeSync(t *testing.T) {
	source := &fakeSource{text: "Req A must allow login. Req B must allow logout."}
	// every chunk reports the same requirement id plus one of its own
	extractor := &fakeExtractor{perChunk: func(i int, chunk string) model.ChunkExtraction {
		return model.ChunkExtraction{
			Index: i,
			Requirements: []model.Requirement{
				{ID: "REQ-001", Name: "Login", Description: "Users can log in"},
				{ID: fmt.Sprintf("REQ-10%d", i), Name: fmt.Sprintf("Extra %d", i), Description: fmt.Sprintf("Chunk %d extra", i)},
			},
		}
	}}
	store := &fakeStore{report: &model.SyncReport{Status: model.StatusCompleted, Created: 3}}

	p := New(source, extractor, store, Options{MaxChunkSize: 30, ChunkOverlap: 5})
	job := &jobs.ExtractionJob{ID: "job-1", DocumentPath: "doc.txt", ProjectName: "shop", Model: "gpt-4o-mini"}

	report, err := p.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, report.Status)

	require.NotNil(t, store.graph)
	assert.Equal(t, "shop", store.graph.ProjectName)
	assert.Equal(t, "gpt-4o-mini", extractor.model)
	require.True(t, len(extractor.chunks) > 1, "expected the document to be chunked")

	// REQ-001 appears once despite showing up in every chunk
	seen := map[string]int{}
	for _, r := range store.graph.Requirements {
		seen[r.ID]++
	}
	assert.Equal(t, 1, seen["REQ-001"])
	assert.Len(t, store.graph.Requirements, 1+len(extractor.chunks))
}

func TestPipeline_SourceErrorPropagates(t *testing.T) {
	source := &fakeSource{err: apperrors.NewSourceNotFound("missing.txt", nil)}
	p := New(source, &fakeExtractor{}, &fakeStore{}, Options{})

	_, err := p.Run(context.Background(), &jobs.ExtractionJob{DocumentPath: "missing.txt", ProjectName: "shop"})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeSource))
}

func TestPipeline_ExtractorErrorPropagatesRetryable(t *testing.T) {
	source := &fakeSource{text: "Some requirement text."}
	extractor := &fakeExtractor{err: apperrors.NewServiceUnavailable("llm", nil)}
	p := New(source, extractor, &fakeStore{}, Options{})

	_, err := p.Run(context.Background(), &jobs.ExtractionJob{DocumentPath: "doc.txt", ProjectName: "shop"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestPipeline_SyncReportReturnedOnStoreFailure(t *testing.T) {
	source := &fakeSource{text: "Some requirement text."}
	extractor := &fakeExtractor{perChunk: func(i int, chunk string) model.ChunkExtraction {
		return model.ChunkExtraction{Index: i}
	}}
	store := &fakeStore{
		report: &model.SyncReport{Status: model.StatusFailed},
		err:    apperrors.NewServiceUnavailable("graph store", nil),
	}
	p := New(source, extractor, store, Options{})

	report, err := p.Run(context.Background(), &jobs.ExtractionJob{DocumentPath: "doc.txt", ProjectName: "shop"})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, model.StatusFailed, report.Status)
}
