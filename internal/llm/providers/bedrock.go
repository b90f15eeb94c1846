package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/kodokalabs/tetsuo.26/internal/llm"
)

// BedrockProvider adapts AWS Bedrock's Converse API to the llm.Provider
// interface, used when a deployment prefers IAM-based auth and foundation
// models hosted inside an AWS account over calling Anthropic/OpenAI directly.
type BedrockProvider struct {
	client *bedrockruntime.Client
	model  string
}

// NewBedrockProvider loads the default AWS config chain (env, shared config,
// IAM role) for region and credentials.
func NewBedrockProvider(ctx context.Context, region, defaultModel string) (*BedrockProvider, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	return &BedrockProvider{
		client: bedrockruntime.NewFromConfig(awsCfg),
		model:  defaultModel,
	}, nil
}

func (p *BedrockProvider) Name() string { return "bedrock" }

func (p *BedrockProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	messages, err := p.convertMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("bedrock: convert messages: %w", err)
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(model),
		Messages: messages,
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.System}}
	}
	if req.MaxTokens > 0 {
		input.InferenceConfig = &types.InferenceConfiguration{MaxTokens: aws.Int32(int32(req.MaxTokens))}
	}
	if len(req.Tools) > 0 {
		toolConfig, err := p.convertTools(req.Tools)
		if err != nil {
			return nil, fmt.Errorf("bedrock: convert tools: %w", err)
		}
		input.ToolConfig = toolConfig
	}

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock: converse request: %w", err)
	}

	resp := &llm.Response{}
	if out.Usage != nil {
		resp.Usage = llm.Usage{
			InputTokens:  int64(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int64(aws.ToInt32(out.Usage.OutputTokens)),
		}
	}
	msgOutput, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return resp, nil
	}
	for _, block := range msgOutput.Value.Content {
		switch variant := block.(type) {
		case *types.ContentBlockMemberText:
			resp.Content += variant.Value
		case *types.ContentBlockMemberToolUse:
			input, err := variant.Value.Input.(document.Interface).MarshalSmithyDocument()
			if err != nil {
				return nil, fmt.Errorf("bedrock: marshal tool input: %w", err)
			}
			resp.ToolCalls = append(resp.ToolCalls, llm.ToolCall{
				ID:    aws.ToString(variant.Value.ToolUseId),
				Name:  aws.ToString(variant.Value.Name),
				Input: input,
			})
		}
	}
	return resp, nil
}

func (p *BedrockProvider) convertMessages(messages []llm.Message) ([]types.Message, error) {
	result := make([]types.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			continue
		}

		var content []types.ContentBlock
		if m.Content != "" && m.Role != "tool" {
			content = append(content, &types.ContentBlockMemberText{Value: m.Content})
		}
		if m.Role == "tool" {
			content = append(content, &types.ContentBlockMemberToolResult{
				Value: types.ToolResultBlock{
					ToolUseId: aws.String(m.ToolCallID),
					Content:   []types.ToolResultContentBlock{&types.ToolResultContentBlockMemberText{Value: m.Content}},
				},
			})
		}
		for _, tc := range m.ToolCalls {
			var input any
			if len(tc.Input) > 0 {
				if err := json.Unmarshal(tc.Input, &input); err != nil {
					return nil, fmt.Errorf("invalid tool call input for %s: %w", tc.Name, err)
				}
			}
			content = append(content, &types.ContentBlockMemberToolUse{
				Value: types.ToolUseBlock{
					ToolUseId: aws.String(tc.ID),
					Name:      aws.String(tc.Name),
					Input:     document.NewLazyDocument(input),
				},
			})
		}

		role := types.ConversationRoleUser
		if m.Role == "assistant" {
			role = types.ConversationRoleAssistant
		}
		result = append(result, types.Message{Role: role, Content: content})
	}
	return result, nil
}

func (p *BedrockProvider) convertTools(defs []llm.ToolDefinition) (*types.ToolConfiguration, error) {
	tools := make([]types.Tool, 0, len(defs))
	for _, d := range defs {
		var schema any
		if len(d.Schema) > 0 {
			if err := json.Unmarshal(d.Schema, &schema); err != nil {
				return nil, fmt.Errorf("invalid schema for tool %s: %w", d.Name, err)
			}
		}
		tools = append(tools, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(d.Name),
				Description: aws.String(d.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)},
			},
		})
	}
	return &types.ToolConfiguration{Tools: tools}, nil
}
