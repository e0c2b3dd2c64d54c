package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
)

// captionCompleter is the slice of the OpenAI client the service uses;
// tests substitute a canned implementation.
type captionCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CaptionService generates meme captions through an LLM, with a redis cache
// in front so identical prompts are answered once.
type CaptionService struct {
	completer captionCompleter
	redis     *redis.Client
	model     string
	cacheTTL  time.Duration
	logger    *slog.Logger
}

func NewCaptionService(apiKey, baseURL, model string, redisClient *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *CaptionService {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &CaptionService{
		completer: openai.NewClientWithConfig(cfg),
		redis:     redisClient,
		model:     model,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "caption:" + hex.EncodeToString(sum[:])
}

// Generate returns a caption for the prompt, serving repeats from cache.
func (s *CaptionService) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	key := cacheKey(prompt)
	if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
		s.logger.Debug("caption cache hit", "key", key)
		return cached, nil
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("caption cache read failed", "error", err)
	}

	resp, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write short, punchy meme captions. Reply with the caption only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: 60,
	})
	if err != nil {
		return "", fmt.Errorf("caption generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("caption generation returned no choices")
	}
	caption := strings.TrimSpace(resp.Choices[0].Message.Content)

	if err := s.redis.Set(ctx, key, caption, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("caption cache write failed", "error", err)
	}
	return caption, nil
}
