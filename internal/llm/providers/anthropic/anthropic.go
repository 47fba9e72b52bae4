// internal/llm/providers/anthropic/anthropic.go
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/llm"
	anthropic "github.com/liushuangls/go-anthropic/v2"
)

func init() {
	llm.Register("anthropic", func() llm.Provider {
		return &Provider{
			supportedModels: []string{
				"claude-3-5-sonnet-20241022",
				"claude-3-5-haiku-20241022",
				"claude-3-opus-20240229",
			},
		}
	})
}

type Provider struct {
	client          *anthropic.Client
	defaultModel    string
	supportedModels []string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("anthropic api密钥未提供")
	}

	var opts []anthropic.ClientOption
	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	p.client = anthropic.NewClient(apiKey, opts...)

	if model, exists := config["default_model"]; exists && model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "claude-3-5-sonnet-20241022"
	}

	return nil
}

func (p *Provider) GetName() string {
	return "Anthropic Claude"
}

func (p *Provider) GetSupportedModels() []string {
	return p.supportedModels
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := anthropic.RoleUser
		if m.Role == "assistant" {
			role = anthropic.RoleAssistant
		}
		messages = append(messages, anthropic.Message{
			Role: role,
			Content: []anthropic.MessageContent{
				anthropic.NewTextMessageContent(m.Content),
			},
		})
	}

	msgReq := anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.SystemPrompt != "" {
		msgReq.System = req.SystemPrompt
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		msgReq.Temperature = &temp
	}

	resp, err := p.client.CreateMessages(ctx, msgReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic请求失败: %w", err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return nil, errors.New("anthropic返回了空的内容")
	}

	return &llm.CompletionResponse{
		Text:         *resp.Content[0].Text,
		TokensUsed:   resp.Usage.InputTokens + resp.Usage.OutputTokens,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}
