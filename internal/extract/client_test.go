package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "reqgraph/pkg/errors"
)

type fakeCompletionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// newFakeGateway returns an OpenAI-compatible endpoint whose reply is
// computed from the user message, plus a counter of received calls.
func newFakeGateway(t *testing.T, reply func(userMsg string) string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req fakeCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		userMsg := ""
		for _, m := range req.Messages {
			if m.Role == "user" {
				userMsg = m.Content
			}
		}
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": reply(userMsg),
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testOptions(baseURL string) Options {
	return Options{
		BaseURL:        baseURL,
		Model:          "test-model",
		Timeout:        5 * time.Second,
		RequestsPerMin: 600000,
		CacheTTL:       time.Minute,
		Concurrency:    4,
		RetryBackoff:   time.Millisecond,
	}
}

func TestExtractChunk_MapsRecords(t *testing.T) {
	payload := "requirements[2]{id,name,description,type,priority,status,category,tags,risks,constraints,assumptions,stakeholders}:\n" +
		"  REQ-1,User login,\"Users authenticate with email, password\",functional,high,draft,auth,security|access,Credential stuffing,Must use TLS,SMTP is reachable,Product Owner|Security Team\n" +
		"  REQ-2,Logout,Users can end their session,functional,low,draft,auth,,,,,\n" +
		"roles[1]{name,description}:\n" +
		"  End User,A registered customer\n" +
		"relationships[1]{source,target,type}:\n" +
		"  REQ-2,REQ-1,DEPENDS_ON\n"

	srv, _ := newFakeGateway(t, func(string) string { return payload })
	c := NewClient(testOptions(srv.URL))

	res, err := c.ExtractChunk(context.Background(), 3, "some chunk text", "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Index)
	require.Len(t, res.Requirements, 2)
	r1 := res.Requirements[0]
	assert.Equal(t, "REQ-1", r1.ID)
	assert.Equal(t, "User login", r1.Name)
	assert.Equal(t, "Users authenticate with email, password", r1.Description)
	assert.Equal(t, []string{"security", "access"}, r1.Tags)
	assert.Equal(t, []string{"Credential stuffing"}, r1.Risks)
	assert.Equal(t, []string{"Product Owner", "Security Team"}, r1.Stakeholders)

	require.Len(t, res.Roles, 1)
	assert.Equal(t, "End User", res.Roles[0].Name)

	require.Len(t, res.Relationships, 1)
	assert.Equal(t, "DEPENDS_ON", res.Relationships[0].Type)
}

func TestExtractChunk_GarbageYieldsEmptySet(t *testing.T) {
	srv, _ := newFakeGateway(t, func(string) string {
		return "I'm sorry, I could not find any requirements here."
	})
	c := NewClient(testOptions(srv.URL))

	res, err := c.ExtractChunk(context.Background(), 0, "chunk", "")
	require.NoError(t, err)
	assert.Empty(t, res.Requirements)
	assert.Empty(t, res.Roles)
	assert.Empty(t, res.Relationships)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtractChunk_CachesByChunkContent(t *testing.T) {
	srv, calls := newFakeGateway(t, func(string) string {
		return "requirements[1]{id,name,description}:\n  REQ-1,Login,Users log in\n"
	})
	c := NewClient(testOptions(srv.URL))

	_, err := c.ExtractChunk(context.Background(), 0, "identical chunk", "")
	require.NoError(t, err)
	res, err := c.ExtractChunk(context.Background(), 5, "identical chunk", "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load(), "second call should hit the cache")
	assert.Equal(t, 5, res.Index, "cached result adopts the caller's chunk index")
}

func TestExtractAll_RestoresChunkOrder(t *testing.T) {
	marker := regexp.MustCompile(`CHUNK-(\d+)`)
	srv, _ := newFakeGateway(t, func(userMsg string) string {
		m := marker.FindStringSubmatch(userMsg)
		return fmt.Sprintf("requirements[1]{id,name,description}:\n  REQ-%s,Req %s,From chunk %s\n", m[1], m[1], m[1])
	})
	c := NewClient(testOptions(srv.URL))

	chunks := make([]string, 8)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("CHUNK-%d text about requirements", i)
	}

	results, err := c.ExtractAll(context.Background(), chunks, "")
	require.NoError(t, err)
	require.Len(t, results, len(chunks))
	for i, res := range results {
		require.Len(t, res.Requirements, 1)
		assert.Equal(t, fmt.Sprintf("REQ-%d", i), res.Requirements[0].ID)
		assert.Equal(t, i, res.Index)
	}
}

func TestExtractChunk_ServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(testOptions(srv.URL))
	_, err := c.ExtractChunk(context.Background(), 0, "chunk", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeService))
	assert.True(t, apperrors.IsRetryable(err))
}
