package adapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ewangz/agentconv/pkg/datatypes/claude"
	"github.com/ewangz/agentconv/pkg/datatypes/openai"
	"github.com/ewangz/agentconv/pkg/profile"
)

// testProfile creates a test profile with default settings
func testProfile() *profile.Profile {
	return &profile.Profile{
		Name:   "test",
		Target: "openai",
		Options: &profile.OptionsConfig{
			FunctionCallMode: "auto",
		},
		Gemini: &profile.GeminiConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
		},
	}
}

// testCtx creates a context with a test profile
func testCtx() context.Context {
	return profile.WithProfile(context.Background(), testProfile())
}

// testCtxWithOptions creates a context with a customized test profile
func testCtxWithOptions(opts func(*profile.Profile)) context.Context {
	p := testProfile()
	opts(p)
	return profile.WithProfile(context.Background(), p)
}

func TestConvertClaudeRequestToOpenAIRequest_BasicFields(t *testing.T) {
	temperature := 0.7
	topP := 0.9
	tests := []struct {
		name string
		src  *claude.GenerateMessageRequest
		want func(*openai.ChatCompletionRequest) bool
	}{
		{
			name: "basic fields conversion",
			src: &claude.GenerateMessageRequest{
				Model:       "claude-sonnet-4",
				MaxTokens:   1000,
				Temperature: &temperature,
				TopP:        &topP,
				Messages:    []*claude.Message{},
			},
			want: func(dst *openai.ChatCompletionRequest) bool {
				return dst.Model == "claude-sonnet-4" &&
					*dst.MaxTokens == 1000 &&
					*dst.Temperature == 0.7 &&
					*dst.TopP == 0.9
			},
		},
		{
			name: "zero max tokens omitted",
			src: &claude.GenerateMessageRequest{
				Model:    "claude-sonnet-4",
				Messages: []*claude.Message{},
			},
			want: func(dst *openai.ChatCompletionRequest) bool {
				return dst.MaxTokens == nil && dst.Temperature == nil && dst.TopP == nil
			},
		},
		{
			name: "top level system becomes leading system message",
			src: &claude.GenerateMessageRequest{
				Model:  "claude-sonnet-4",
				System: claude.MessageContents{{Type: claude.MessageContentTypeText, Text: "You are concise"}},
				Messages: []*claude.Message{
					{Role: claude.MessageRoleUser, Content: claude.MessageContents{{Type: claude.MessageContentTypeText, Text: "hi"}}},
				},
			},
			want: func(dst *openai.ChatCompletionRequest) bool {
				return len(dst.Messages) == 2 &&
					dst.Messages[0].Role == openai.ChatCompletionMessageRoleSystem &&
					dst.Messages[0].Content.PlainText() == "You are concise" &&
					dst.Messages[1].Role == openai.ChatCompletionMessageRoleUser
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertClaudeRequestToOpenAIRequest(testCtx(), tt.src)
			if !tt.want(got) {
				t.Errorf("unexpected conversion result: %+v", got)
			}
		})
	}
}

func TestConvertClaudeRequestToOpenAIRequest_ModelMapping(t *testing.T) {
	ctx := testCtxWithOptions(func(p *profile.Profile) {
		p.Options.Models = map[string]string{"claude-sonnet-4": "gpt-4o"}
	})
	src := &claude.GenerateMessageRequest{
		Model:    "claude-sonnet-4",
		Messages: []*claude.Message{},
	}

	got := ConvertClaudeRequestToOpenAIRequest(ctx, src)
	if got.Model != "gpt-4o" {
		t.Errorf("expected mapped model gpt-4o, got %q", got.Model)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_ToolUse(t *testing.T) {
	src := &claude.GenerateMessageRequest{
		Model: "claude-sonnet-4",
		Messages: []*claude.Message{
			{
				Role: claude.MessageRoleAssistant,
				Content: claude.MessageContents{
					{Type: claude.MessageContentTypeText, Text: "let me check"},
					{Type: claude.MessageContentTypeToolUse, ID: "toolu_01", Name: "lookup", Input: json.RawMessage(`{"q":"weather"}`)},
					{Type: claude.MessageContentTypeToolUse, ID: "toolu_02", Name: "search", Input: nil},
				},
			},
		},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	if len(got.Messages) != 1 {
		t.Fatalf("expected one assistant message, got %d", len(got.Messages))
	}
	message := got.Messages[0]
	if message.Role != openai.ChatCompletionMessageRoleAssistant {
		t.Fatalf("expected assistant role, got %q", message.Role)
	}
	if message.Content.PlainText() != "let me check" {
		t.Errorf("expected text content preserved, got %q", message.Content.PlainText())
	}
	if len(message.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(message.ToolCalls))
	}
	if message.ToolCalls[0].ID != "toolu_01" ||
		message.ToolCalls[0].Function.Name != "lookup" ||
		message.ToolCalls[0].Function.Arguments != `{"q":"weather"}` {
		t.Errorf("unexpected first tool call: %+v", message.ToolCalls[0])
	}
	if message.ToolCalls[1].Function.Arguments != "{}" {
		t.Errorf("expected empty input stringified as {}, got %q", message.ToolCalls[1].Function.Arguments)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_ToolResultExpansion(t *testing.T) {
	// One user turn carrying N tool results expands into N tool messages.
	src := &claude.GenerateMessageRequest{
		Model: "claude-sonnet-4",
		Messages: []*claude.Message{
			{
				Role: claude.MessageRoleAssistant,
				Content: claude.MessageContents{
					{Type: claude.MessageContentTypeToolUse, ID: "toolu_01", Name: "lookup", Input: json.RawMessage(`{}`)},
					{Type: claude.MessageContentTypeToolUse, ID: "toolu_02", Name: "search", Input: json.RawMessage(`{}`)},
				},
			},
			{
				Role: claude.MessageRoleUser,
				Content: claude.MessageContents{
					{Type: claude.MessageContentTypeToolResult, ToolUseID: "toolu_01", Content: claude.MessageContents{{Type: claude.MessageContentTypeText, Text: "sunny"}}},
					{Type: claude.MessageContentTypeToolResult, ToolUseID: "toolu_02", Content: claude.MessageContents{{Type: claude.MessageContentTypeText, Text: "3 hits"}}},
					{Type: claude.MessageContentTypeText, Text: "now summarize"},
				},
			},
		},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	if len(got.Messages) != 4 {
		t.Fatalf("expected assistant + 2 tool + user messages, got %d", len(got.Messages))
	}
	first, second := got.Messages[1], got.Messages[2]
	if first.Role != openai.ChatCompletionMessageRoleTool || first.ToolCallID != "toolu_01" || first.Name != "lookup" {
		t.Errorf("unexpected first tool message: %+v", first)
	}
	if second.Role != openai.ChatCompletionMessageRoleTool || second.ToolCallID != "toolu_02" || second.Name != "search" {
		t.Errorf("unexpected second tool message: %+v", second)
	}
	if first.Content.PlainText() != "sunny" || second.Content.PlainText() != "3 hits" {
		t.Errorf("unexpected tool message contents: %q, %q", first.Content.PlainText(), second.Content.PlainText())
	}
	last := got.Messages[3]
	if last.Role != openai.ChatCompletionMessageRoleUser || last.Content.PlainText() != "now summarize" {
		t.Errorf("unexpected trailing user message: %+v", last)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_UnresolvableToolResult(t *testing.T) {
	src := &claude.GenerateMessageRequest{
		Model: "claude-sonnet-4",
		Messages: []*claude.Message{
			{
				Role: claude.MessageRoleUser,
				Content: claude.MessageContents{
					{Type: claude.MessageContentTypeToolResult, ToolUseID: "toolu_missing", Content: claude.MessageContents{{Type: claude.MessageContentTypeText, Text: "orphan"}}},
				},
			},
		},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	if len(got.Messages) != 1 {
		t.Fatalf("expected one tool message, got %d", len(got.Messages))
	}
	if got.Messages[0].Name != UnknownToolName {
		t.Errorf("expected placeholder name, got %q", got.Messages[0].Name)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_OrphanToolResultTextualName(t *testing.T) {
	src := &claude.GenerateMessageRequest{
		Model: "claude-sonnet-4",
		Messages: []*claude.Message{
			{
				Role: claude.MessageRoleUser,
				Content: claude.MessageContents{
					{Type: claude.MessageContentTypeToolResult, ToolUseID: "toolu_missing", Content: claude.MessageContents{{Type: claude.MessageContentTypeText, Text: "Observation of Tool `search`: 3 hits"}}},
				},
			},
		},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	if len(got.Messages) != 1 {
		t.Fatalf("expected one tool message, got %d", len(got.Messages))
	}
	// An id the index never saw still recovers the name embedded textually.
	if got.Messages[0].Name != "search" {
		t.Errorf("expected textual name recovered, got %q", got.Messages[0].Name)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_Images(t *testing.T) {
	src := &claude.GenerateMessageRequest{
		Model: "claude-sonnet-4",
		Messages: []*claude.Message{
			{
				Role: claude.MessageRoleUser,
				Content: claude.MessageContents{
					{Type: claude.MessageContentTypeText, Text: "what is this?"},
					{Type: claude.MessageContentTypeImage, Source: &claude.MessageContentSource{
						Type:      claude.MessageContentSourceTypeBase64,
						MediaType: "image/png",
						Data:      "AAAA",
					}},
					{Type: claude.MessageContentTypeImage, Source: &claude.MessageContentSource{
						Type: claude.MessageContentSourceTypeURL,
						URL:  "https://example.com/cat.png",
					}},
				},
			},
		},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	if len(got.Messages) != 1 {
		t.Fatalf("expected one user message, got %d", len(got.Messages))
	}
	content := got.Messages[0].Content
	if !content.IsParts() || len(content.Parts) != 3 {
		t.Fatalf("expected 3 content parts, got %+v", content)
	}
	if content.Parts[1].ImageUrl.Url != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected inline image url: %q", content.Parts[1].ImageUrl.Url)
	}
	if content.Parts[2].ImageUrl.Url != "https://example.com/cat.png" {
		t.Errorf("unexpected url image: %q", content.Parts[2].ImageUrl.Url)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_Tools(t *testing.T) {
	src := &claude.GenerateMessageRequest{
		Model: "claude-sonnet-4",
		Tools: []*claude.Tool{
			{Name: "lookup", Description: "look things up", InputSchema: json.RawMessage(`{"type":"object"}`)},
			{Name: "search", Description: "search the web", InputSchema: json.RawMessage(`{"type":"object"}`)},
		},
		Messages: []*claude.Message{},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	if len(got.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(got.Tools))
	}
	for i, name := range []string{"lookup", "search"} {
		if got.Tools[i].Type != openai.ChatCompletionMessageToolCallTypeFunction ||
			got.Tools[i].Function.Name != name {
			t.Errorf("unexpected tool %d: %+v", i, got.Tools[i])
		}
	}
	if got.Tools[0].Function.Description != "look things up" {
		t.Errorf("expected description preserved, got %q", got.Tools[0].Function.Description)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_EmptyToolsOmitted(t *testing.T) {
	src := &claude.GenerateMessageRequest{
		Model:    "claude-sonnet-4",
		Tools:    []*claude.Tool{},
		Messages: []*claude.Message{},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	if got.Tools != nil {
		t.Errorf("expected no tools field for empty declarations, got %+v", got.Tools)
	}
}

func TestConvertClaudeRequestToOpenAIRequest_SchemaRepairApplied(t *testing.T) {
	src := &claude.GenerateMessageRequest{
		Model: "claude-sonnet-4",
		Tools: []*claude.Tool{
			{Name: "outpaint", InputSchema: json.RawMessage(`{"required":["prompt"],"properties":{"english_prompt":{}}}`)},
		},
		Messages: []*claude.Message{},
	}

	got := ConvertClaudeRequestToOpenAIRequest(testCtx(), src)
	var parsed struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(got.Tools[0].Function.Parameters, &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Required) != 1 || parsed.Required[0] != "english_prompt" {
		t.Errorf("expected repaired required list, got %v", parsed.Required)
	}

	got = ConvertClaudeRequestToOpenAIRequest(testCtx(), src, DisableSchemaRepair())
	if err := json.Unmarshal(got.Tools[0].Function.Parameters, &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Required) != 1 || parsed.Required[0] != "prompt" {
		t.Errorf("expected untouched required list with repair disabled, got %v", parsed.Required)
	}
}
