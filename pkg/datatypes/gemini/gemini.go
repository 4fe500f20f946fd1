package gemini

import (
	"encoding/json"
	"fmt"
)

// GenerateContentRequest follows the Gemini generateContent request format.
// reference: https://ai.google.dev/api/generate-content
type GenerateContentRequest struct {
	Contents          []*Content        `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []*Tool           `json:"tools,omitempty"`
	ToolConfig        *ToolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	Labels            map[string]string `json:"labels,omitempty"`
}

type Content struct {
	Role  ContentRole `json:"role,omitempty"`
	Parts []*Part     `json:"parts"`
}

type ContentRole string

const (
	ContentRoleUser  ContentRole = "user"
	ContentRoleModel ContentRole = "model"
)

// Part is a union over the part kinds the converter produces and consumes:
// exactly one of Text, InlineData, FunctionCall or FunctionResponse is set.
type Part struct {
	Text             string            `json:"text,omitempty"`
	InlineData       *Blob             `json:"inline_data,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

func TextPart(text string) *Part {
	return &Part{Text: text}
}

type Blob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type FunctionCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type FunctionResponse struct {
	ID       string                   `json:"id,omitempty"`
	Name     string                   `json:"name"`
	Response *FunctionResponsePayload `json:"response,omitempty"`
}

type FunctionResponsePayload struct {
	Result string `json:"result"`
}

type Tool struct {
	FunctionDeclarations []*FunctionDeclaration `json:"functionDeclarations,omitempty"`
}

type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type ToolConfig struct {
	FunctionCallingConfig *FunctionCallingConfig `json:"functionCallingConfig,omitempty"`
}

type FunctionCallingConfig struct {
	Mode FunctionCallingMode `json:"mode"`
}

type FunctionCallingMode string

const (
	FunctionCallingModeAuto      FunctionCallingMode = "AUTO"
	FunctionCallingModeAny       FunctionCallingMode = "ANY"
	FunctionCallingModeValidated FunctionCallingMode = "VALIDATED"
)

type GenerationConfig struct {
	ThinkingConfig *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

type ThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// GenerateContentResponse follows the Gemini generateContent response format.
type GenerateContentResponse struct {
	Candidates     []*Candidate    `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
}

type Candidate struct {
	Content      *Content     `json:"content,omitempty"`
	FinishReason FinishReason `json:"finishReason,omitempty"`
	Index        int          `json:"index,omitempty"`
}

type FinishReason string

const (
	FinishReasonStop      FinishReason = "STOP"
	FinishReasonMaxTokens FinishReason = "MAX_TOKENS"
	FinishReasonSafety    FinishReason = "SAFETY"
)

type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     int64 `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int64 `json:"candidatesTokenCount,omitempty"`
	ThoughtsTokenCount   int64 `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount      int64 `json:"totalTokenCount,omitempty"`
}

type Error struct {
	Inner struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`

	statusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("(%d) %s: %s", e.Inner.Code, e.Inner.Status, e.Inner.Message)
}

func (e *Error) Type() string                 { return e.Inner.Status }
func (e *Error) Message() string              { return e.Inner.Message }
func (e *Error) Source() string               { return "gemini" }
func (e *Error) StatusCode() int              { return e.statusCode }
func (e *Error) SetStatusCode(statusCode int) { e.statusCode = statusCode }
