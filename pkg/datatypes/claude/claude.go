package claude

import (
	"encoding/json"
	"errors"
	"strings"
)

// GenerateMessageRequest follows the Claude Messages API request format.
// reference: https://docs.anthropic.com/en/api/messages
//
// Legacy agentic traces carry system prompts as role "system" entries inside
// the messages array rather than in the top-level system field; both shapes
// are accepted.
type GenerateMessageRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []*Message      `json:"messages"`
	System      MessageContents `json:"system,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopK        *int            `json:"top_k,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	Tools       []*Tool         `json:"tools,omitempty"`
}

type Message struct {
	Role    MessageRole     `json:"role"`
	Content MessageContents `json:"content"`
	// Name is only populated on legacy tool-role messages.
	Name string `json:"name,omitempty"`
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
	MessageRoleTool      MessageRole = "tool"
)

type MessageContentType string

const (
	MessageContentTypeText       MessageContentType = "text"
	MessageContentTypeImage      MessageContentType = "image"
	MessageContentTypeToolUse    MessageContentType = "tool_use"
	MessageContentTypeToolResult MessageContentType = "tool_result"
)

type MessageContents []*MessageContent

func (mc MessageContents) MarshalJSON() ([]byte, error) {
	if mc == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]*MessageContent(mc))
}

func (mc *MessageContents) UnmarshalJSON(data []byte) error {
	for _, b := range data {
		switch b {
		case ' ', '\r', '\n', '\t':
		case '[':
			var contents []*MessageContent
			if err := json.Unmarshal(data, &contents); err != nil {
				return err
			}
			*mc = contents
			return nil
		case '"':
			var content string
			if err := json.Unmarshal(data, &content); err != nil {
				return err
			}
			*mc = append(*mc, &MessageContent{
				Type: MessageContentTypeText,
				Text: content,
			})
			return nil
		default:
			return errors.New("message content should be a string or an array")
		}
	}
	return errors.New("empty message content")
}

// Text flattens the text blocks of the contents into a single string.
// Non-text blocks are skipped.
func (mc MessageContents) Text() string {
	var sb strings.Builder
	for _, content := range mc {
		if content.Type == MessageContentTypeText {
			sb.WriteString(content.Text)
		}
	}
	return sb.String()
}

type MessageContent struct {
	Type      MessageContentType    `json:"type"`
	Text      string                `json:"text,omitempty"`
	Source    *MessageContentSource `json:"source,omitempty"`
	ID        string                `json:"id,omitempty"`
	Name      string                `json:"name,omitempty"`
	Input     json.RawMessage       `json:"input,omitempty"`
	ToolUseID string                `json:"tool_use_id,omitempty"`
	Content   MessageContents       `json:"content,omitempty"`
}

type MessageContentSource struct {
	Type      MessageContentSourceType `json:"type"`
	MediaType string                   `json:"media_type,omitempty"`
	Data      string                   `json:"data,omitempty"`
	URL       string                   `json:"url,omitempty"`
}

type MessageContentSourceType string

const (
	MessageContentSourceTypeBase64 MessageContentSourceType = "base64"
	MessageContentSourceTypeURL    MessageContentSourceType = "url"
)

type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}
