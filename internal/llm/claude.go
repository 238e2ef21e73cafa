package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const (
	defaultClaudeModel = "claude-3-5-haiku-latest"

	// Room for one verdict object per candidate of a full review batch.
	claudeMaxTokens = 4096
)

// ClaudeClient talks to the Anthropic Messages API. It implements LLMClient
// only: Anthropic has no embedding endpoint, so it cannot back the Lexical
// model.
type ClaudeClient struct {
	api   *anthropic.Client
	model anthropic.Model
}

func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	if model == "" {
		model = defaultClaudeModel
	}
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		api:   anthropic.NewClient(apiKey, opts...),
		model: anthropic.Model(model),
	}
}

// Generate sends prompt as a single user turn and returns the concatenated
// text blocks of the reply.
func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("claude %s: %w", c.model, err)
	}

	text := replyText(resp.Content)
	if text == "" {
		return "", fmt.Errorf("claude %s: reply has no text (stop reason %q)", c.model, resp.StopReason)
	}
	if resp.StopReason == anthropic.MessagesStopReasonMaxTokens {
		return "", fmt.Errorf("claude %s: reply truncated at %d tokens", c.model, claudeMaxTokens)
	}
	return text, nil
}

func replyText(blocks []anthropic.MessageContent) string {
	var b strings.Builder
	for _, block := range blocks {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			b.WriteString(*block.Text)
		}
	}
	return b.String()
}
