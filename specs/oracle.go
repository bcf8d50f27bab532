package specs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Oracle fills still-missing attribute keys from a product name and a page
// text excerpt. Implementations return strict JSON mapping only the
// requested keys; anything else is ignored by the caller.
type Oracle interface {
	Fill(ctx context.Context, productName, pageText string, missing []string) (map[string]any, error)
}

// maxExcerptBytes bounds how much page text a single oracle request may
// carry.
const maxExcerptBytes = 9000

const oracleTimeout = 15 * time.Second

// OpenAIOracle calls an OpenAI-compatible chat endpoint for attribute
// filling.
type OpenAIOracle struct {
	client *openai.Client
	model  string
}

// NewOpenAIOracle builds an oracle client. baseURL may be empty for the
// default endpoint; model must be set.
func NewOpenAIOracle(apiKey, baseURL, model string) *OpenAIOracle {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIOracle{client: openai.NewClientWithConfig(cfg), model: model}
}

// Fill issues one bounded request and parses its strict-JSON answer.
func (o *OpenAIOracle) Fill(ctx context.Context, productName, pageText string, missing []string) (map[string]any, error) {
	if len(pageText) > maxExcerptBytes {
		pageText = pageText[:maxExcerptBytes]
	}
	ctx, cancel := context.WithTimeout(ctx, oracleTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Ürün: %q\nMetin: %q\nGereken alanlar: %s\nSadece bu alanları içeren bir JSON nesnesi döndür. Bilinmiyorsa null bırak.",
		productName, pageText, strings.Join(missing, ", "),
	)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   400,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("oracle: empty response")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("oracle: malformed JSON: %w", err)
	}
	return out, nil
}
