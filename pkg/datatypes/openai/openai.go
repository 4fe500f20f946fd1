package openai

import (
	"encoding/json"
	"errors"
)

// ChatCompletionRequest follows the OpenAI chat completions request format.
// reference: https://platform.openai.com/docs/api-reference/chat/create
type ChatCompletionRequest struct {
	Model       string                   `json:"model,omitempty"`
	Messages    []*ChatCompletionMessage `json:"messages"`
	MaxTokens   *int                     `json:"max_tokens,omitempty"`
	Temperature *float64                 `json:"temperature,omitempty"`
	TopP        *float64                 `json:"top_p,omitempty"`
	Tools       []*ChatCompletionTool    `json:"tools,omitempty"`
}

type ChatCompletionMessage struct {
	Role       ChatCompletionRole            `json:"role"`
	Content    *ChatCompletionMessageContent `json:"content"`
	Name       string                        `json:"name,omitempty"`
	ToolCallID string                        `json:"tool_call_id,omitempty"`
	ToolCalls  []*ChatCompletionToolCall     `json:"tool_calls,omitempty"`
}

type ChatCompletionRole string

const (
	ChatCompletionMessageRoleSystem    ChatCompletionRole = "system"
	ChatCompletionMessageRoleUser      ChatCompletionRole = "user"
	ChatCompletionMessageRoleAssistant ChatCompletionRole = "assistant"
	ChatCompletionMessageRoleTool      ChatCompletionRole = "tool"
)

// ChatCompletionMessageContent is either a bare string or an array of typed
// content parts on the wire. A nil *ChatCompletionMessageContent marshals to
// null, which is what assistant tool-call messages without text carry.
type ChatCompletionMessageContent struct {
	Type  ChatCompletionMessageContentType
	Text  string
	Parts []*ChatCompletionMessageContentPart
}

func Text(text string) *ChatCompletionMessageContent {
	return &ChatCompletionMessageContent{
		Type: ChatCompletionMessageContentTypeText,
		Text: text,
	}
}

func (c ChatCompletionMessageContent) IsText() bool {
	return c.Type == ChatCompletionMessageContentTypeText
}

func (c ChatCompletionMessageContent) IsParts() bool {
	return c.Type == ChatCompletionMessageContentTypeParts
}

// PlainText flattens the content to a single string, joining the text parts
// of a multipart content.
func (c *ChatCompletionMessageContent) PlainText() string {
	if c == nil {
		return ""
	}
	if c.IsText() {
		return c.Text
	}
	var text string
	for _, part := range c.Parts {
		if part.Type == ChatCompletionMessageContentPartTypeText {
			text += part.Text
		}
	}
	return text
}

func (c ChatCompletionMessageContent) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case ChatCompletionMessageContentTypeText:
		return json.Marshal(c.Text)
	case ChatCompletionMessageContentTypeParts:
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *ChatCompletionMessageContent) UnmarshalJSON(data []byte) error {
	for _, b := range data {
		switch b {
		case ' ', '\r', '\n', '\t':
		case '[':
			c.Type = ChatCompletionMessageContentTypeParts
			return json.Unmarshal(data, &c.Parts)
		case '"':
			c.Type = ChatCompletionMessageContentTypeText
			return json.Unmarshal(data, &c.Text)
		case 'n':
			// literal null, keep the zero value
			return nil
		default:
			return errors.New("message content should be a string or an array")
		}
	}
	return errors.New("empty message content")
}

type ChatCompletionMessageContentType string

const (
	ChatCompletionMessageContentTypeText  ChatCompletionMessageContentType = "text"
	ChatCompletionMessageContentTypeParts ChatCompletionMessageContentType = "parts"
)

type ChatCompletionMessageContentPart struct {
	Type     ChatCompletionMessageContentPartType      `json:"type"`
	Text     string                                    `json:"text,omitempty"`
	ImageUrl *ChatCompletionMessageContentPartImageUrl `json:"image_url,omitempty"`
}

type ChatCompletionMessageContentPartType string

const (
	ChatCompletionMessageContentPartTypeText  ChatCompletionMessageContentPartType = "text"
	ChatCompletionMessageContentPartTypeImage ChatCompletionMessageContentPartType = "image_url"
)

type ChatCompletionMessageContentPartImageUrl struct {
	Url    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type ChatCompletionToolCall struct {
	ID       string                                 `json:"id"`
	Type     ChatCompletionMessageToolCallType      `json:"type"`
	Function *ChatCompletionMessageToolCallFunction `json:"function"`
}

type ChatCompletionMessageToolCallType string

const (
	ChatCompletionMessageToolCallTypeFunction ChatCompletionMessageToolCallType = "function"
)

type ChatCompletionMessageToolCallFunction struct {
	Name string `json:"name"`
	// Arguments is a JSON object serialized to a single string, per the
	// chat completions wire format.
	Arguments string `json:"arguments"`
}

type ChatCompletionTool struct {
	Type     ChatCompletionMessageToolCallType `json:"type"`
	Function *ChatCompletionFunction           `json:"function"`
}

type ChatCompletionFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}
