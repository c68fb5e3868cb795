package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"reqgraph/internal/model"
	"reqgraph/internal/tabular"
	apperrors "reqgraph/pkg/errors"
	"reqgraph/pkg/logger"
)

// Options configures the extraction client
type Options struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration // per LLM call
	RequestsPerMin int
	CacheTTL       time.Duration
	Concurrency    int
	RetryBackoff   time.Duration
}

// Client invokes the LLM gateway once per chunk and decodes the tabular
// response into typed records
type Client struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	concurrency int
	backoff     time.Duration
	limiter     *rate.Limiter
	cache       *gocache.Cache
	logger      *zap.Logger
}

// NewClient creates an extraction client against an OpenAI-compatible
// gateway (e.g. LiteLLM)
func NewClient(opts Options) *Client {
	apiKey := opts.APIKey
	if apiKey == "" {
		// local gateways accept any key
		apiKey = "dummy-key"
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = opts.BaseURL + "/v1"

	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RequestsPerMin <= 0 {
		opts.RequestsPerMin = 60
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}

	return &Client{
		client:      openai.NewClientWithConfig(config),
		model:       opts.Model,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		backoff:     opts.RetryBackoff,
		limiter:     rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMin)/60.0), 1),
		cache:       gocache.New(opts.CacheTTL, 10*time.Minute),
		logger:      logger.Get(),
	}
}

// ExtractAll runs per-chunk extraction concurrently and returns results
// restored to original chunk order, so downstream duplicate resolution is
// deterministic regardless of network completion order. An unreachable
// LLM fails the whole batch with a retryable error; unparseable output
// for a chunk yields an empty record set for that chunk only.
func (c *Client) ExtractAll(ctx context.Context, chunks []string, modelOverride string) ([]model.ChunkExtraction, error) {
	results := make([]model.ChunkExtraction, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			// cancellation is observed before each chunk call, not mid-flight
			if err := gctx.Err(); err != nil {
				return apperrors.NewContextCancelled(fmt.Sprintf("chunk %d extraction", i), err)
			}
			res, err := c.ExtractChunk(gctx, i, chunk, modelOverride)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExtractChunk extracts structured records from a single chunk
func (c *Client) ExtractChunk(ctx context.Context, index int, chunk, modelOverride string) (*model.ChunkExtraction, error) {
	modelID := c.model
	if modelOverride != "" {
		modelID = modelOverride
	}

	// re-runs of the same document hit the cache instead of the LLM
	key := cacheKey(modelID, chunk)
	if cached, ok := c.cache.Get(key); ok {
		res := *cached.(*model.ChunkExtraction)
		res.Index = index
		return &res, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewContextCancelled("llm rate limit wait", err)
	}

	content, err := c.complete(ctx, modelID, chunk)
	if err != nil {
		return nil, err
	}

	doc := tabular.Decode(content)
	res := mapDocument(doc, index)
	if len(res.Requirements) == 0 && len(doc.Blocks) == 0 {
		c.logger.Warn("LLM output unparseable, chunk yields empty record set",
			zap.Int("chunk", index),
			zap.Int("response_bytes", len(content)),
		)
	}

	c.cache.Set(key, res, gocache.DefaultExpiration)
	return res, nil
}

// complete performs the chat completion with retry and backoff
func (c *Client) complete(ctx context.Context, modelID, chunk string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(chunk)},
		},
		Temperature: 0,
	}

	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.backoff
			c.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperrors.NewContextCancelled("llm retry wait", ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err = c.client.CreateChatCompletion(callCtx, req)
		cancel()
		if err == nil {
			break
		}

		c.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", modelID),
		)
	}
	if err != nil {
		return "", apperrors.NewServiceUnavailable("llm", err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewServiceUnavailable("llm", fmt.Errorf("no choices in response"))
	}
	return resp.Choices[0].Message.Content, nil
}

func cacheKey(modelID, chunk string) string {
	sum := sha256.Sum256([]byte(modelID + "\x00" + chunk))
	return hex.EncodeToString(sum[:])
}
