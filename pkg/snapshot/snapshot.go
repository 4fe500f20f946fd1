// Package snapshot records conversion and upstream-call outcomes so that
// payload translations can be replayed and audited offline.
package snapshot

import (
	"io"
	"time"

	"github.com/ewangz/agentconv/pkg/datatypes/claude"
	"github.com/ewangz/agentconv/pkg/datatypes/gemini"
	"github.com/ewangz/agentconv/pkg/datatypes/openai"
)

type Recorder interface {
	io.Closer
	Record(snapshot *Snapshot) error
}

func NopRecorder() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Close() error                    { return nil }
func (nopRecorder) Record(snapshot *Snapshot) error { return nil }

// Snapshot captures a single conversion, and the upstream Gemini exchange
// when a call was made. Only the request/response fields matching the
// conversion direction are populated.
type Snapshot struct {
	RequestTime    time.Time                       `json:"request_time"`
	FinishTime     time.Time                       `json:"finish_time"`
	Version        string                          `json:"version"`
	RequestID      string                          `json:"request_id"`
	Profile        string                          `json:"profile,omitempty"`
	Direction      string                          `json:"direction,omitempty"`
	StatusCode     int                             `json:"status_code,omitempty"`
	FinishReason   string                          `json:"finish_reason,omitempty"`
	Error          *Error                          `json:"error,omitempty"`
	ClaudeRequest  *claude.GenerateMessageRequest  `json:"claude_request,omitempty"`
	OpenAIRequest  *openai.ChatCompletionRequest   `json:"openai_request,omitempty"`
	GeminiRequest  *gemini.GenerateContentRequest  `json:"gemini_request,omitempty"`
	GeminiResponse *gemini.GenerateContentResponse `json:"gemini_response,omitempty"`
	Usage          *Usage                          `json:"usage,omitempty"`
}

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Source  string `json:"source,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
