package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// CrossEncoder scores (query, document) pairs jointly via a chat model
// returning a JSON array of relevance scores in [0,1].
type CrossEncoder struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// CrossEncoderConfig holds the rerank endpoint settings.
type CrossEncoderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewCrossEncoder creates a chat-based cross-encoder.
func NewCrossEncoder(cfg *CrossEncoderConfig) *CrossEncoder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &CrossEncoder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

const systemPrompt = "You score search results. Given a query and numbered documents, " +
	"reply with only a JSON array of relevance scores between 0 and 1, one per document, in order."

// Score returns one relevance score per document. Documents are truncated to
// fit the token budget, approximated at four characters per token.
func (ce *CrossEncoder) Score(ctx context.Context, query string, docs []string, budgetTokens int) ([]float64, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	perDoc := 0
	if budgetTokens > 0 {
		perDoc = budgetTokens * 4 / len(docs)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\n", query)
	for i, doc := range docs {
		if perDoc > 0 && len(doc) > perDoc {
			doc = doc[:perDoc]
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, doc)
	}

	resp, err := ce.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       ce.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cross-encoder completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty cross-encoder response")
	}

	scores, err := parseScores(resp.Choices[0].Message.Content, len(docs))
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// parseScores extracts the JSON score array, tolerating surrounding prose.
func parseScores(content string, want int) ([]float64, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in cross-encoder reply")
	}

	var scores []float64
	if err := json.Unmarshal([]byte(content[start:end+1]), &scores); err != nil {
		return nil, fmt.Errorf("parse cross-encoder scores: %w", err)
	}
	if len(scores) != want {
		return nil, fmt.Errorf("cross-encoder returned %d scores, want %d", len(scores), want)
	}
	for i, s := range scores {
		if s < 0 {
			scores[i] = 0
		} else if s > 1 {
			scores[i] = 1
		}
	}
	return scores, nil
}
