// Package perplexity answers conversations through the Perplexity chat API,
// fronted by the response cache. Perplexity speaks the OpenAI wire protocol,
// so the client is a stock OpenAI client pointed at a different base URL.
package perplexity

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
	"github.com/plexcord/plexcord/internal/cachekey"
	"github.com/plexcord/plexcord/internal/shared/rate"
	"github.com/plexcord/plexcord/model"
)

// UsageRecorder receives per-interaction consumption totals. A nil recorder
// disables accounting.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, userID string, promptTokens, completionTokens int64, cached bool) error
}

type Client struct {
	api     *openai.Client
	cfg     *config.PerplexityCfg
	store   *cache.Store
	usage   UsageRecorder
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(ctx context.Context, cfg *config.PerplexityCfg, store *cache.Store, usage UsageRecorder, logger *slog.Logger) *Client {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		limiter = rate.New(ctx, cfg.RequestsPerSec)
	}

	return &Client{
		api:     openai.NewClientWithConfig(cc),
		cfg:     cfg,
		store:   store,
		usage:   usage,
		limiter: limiter,
		logger:  logger,
	}
}

// Ask answers the conversation, serving from cache when an identical
// conversation was answered before. The returned flag reports whether the
// answer was served from cache so callers can surface it, never guess it.
func (c *Client) Ask(ctx context.Context, userID string, conv model.Conversation) (answer string, cached bool, err error) {
	key := cachekey.Derive(conv)

	if key != "" {
		if payload, ok := c.store.Get(key); ok {
			c.record(ctx, userID, 0, 0, true)
			return string(payload), true, nil
		}
	}

	resp, err := c.complete(ctx, conv)
	if err != nil {
		return "", false, err
	}
	if len(resp.Choices) == 0 {
		return "", false, errors.New("empty chat response")
	}
	answer = resp.Choices[0].Message.Content

	if key != "" && answer != "" {
		if serr := c.store.Set(key, []byte(answer), cache.WithTags("user:"+userID)); serr != nil {
			c.logger.Warn("response not cached", "err", serr)
		}
	}

	c.record(ctx, userID, int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens), false)
	return answer, false, nil
}

func (c *Client) complete(ctx context.Context, conv model.Conversation) (openai.ChatCompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(conv))
	for i, turn := range conv {
		messages[i] = openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content}
	}
	req := openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		Messages:  messages,
		MaxTokens: c.cfg.MaxTokens,
	}

	var (
		resp    openai.ChatCompletionResponse
		lastErr error
	)
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if c.limiter != nil {
			c.limiter.Take()
		}
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout.Std())
		resp, lastErr = c.api.CreateChatCompletion(reqCtx, req)
		cancel()
		if lastErr == nil {
			return resp, nil
		}
		if attempt < c.cfg.MaxRetries-1 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			c.logger.Debug("chat request failed, retrying",
				"attempt", attempt+1, "wait", wait, "err", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return resp, ctx.Err()
			}
		}
	}
	return resp, errors.Wrap(lastErr, "chat completion")
}

func (c *Client) record(ctx context.Context, userID string, prompt, completion int64, cached bool) {
	if c.usage == nil {
		return
	}
	if err := c.usage.RecordUsage(ctx, userID, prompt, completion, cached); err != nil {
		c.logger.Warn("usage not recorded", "user", userID, "err", err)
	}
}
