package adapter

import (
	"regexp"

	"github.com/ewangz/agentconv/pkg/datatypes/claude"
	"github.com/ewangz/agentconv/pkg/datatypes/openai"
)

// UnknownToolName is the placeholder substituted when a tool result cannot be
// linked back to the call that produced it. A tool result in the output always
// carries a name, never an empty one.
const UnknownToolName = "unknown"

// ToolCallIndex maps a tool call identifier to the function name of the call
// that produced it. It is built once per conversion by a forward scan of the
// source messages, consulted while translating tool results, and discarded
// when the conversion returns.
type ToolCallIndex map[string]string

// Resolve returns the function name recorded for the given call identifier,
// or UnknownToolName when the identifier was never seen.
func (idx ToolCallIndex) Resolve(callID string) string {
	if name, ok := idx[callID]; ok {
		return name
	}
	return UnknownToolName
}

// ResolveWithContent resolves like Resolve, but when the identifier was never
// seen it additionally tries the textual convention on the result content
// before settling for UnknownToolName.
func (idx ToolCallIndex) ResolveWithContent(callID, content string) string {
	if name := idx.Resolve(callID); name != UnknownToolName {
		return name
	}
	if observed, ok := ExtractObservedToolName(content); ok {
		return observed
	}
	return UnknownToolName
}

// BuildClaudeToolCallIndex scans every tool_use content block in the given
// messages and records its id-to-name mapping. If an id repeats, the last
// occurrence wins.
func BuildClaudeToolCallIndex(messages []*claude.Message) ToolCallIndex {
	idx := make(ToolCallIndex)
	for _, message := range messages {
		for _, content := range message.Content {
			if content.Type == claude.MessageContentTypeToolUse && content.ID != "" {
				idx[content.ID] = content.Name
			}
		}
	}
	return idx
}

// BuildOpenAIToolCallIndex scans the tool_calls of every assistant message and
// records each id-to-name mapping. If an id repeats, the last occurrence wins.
func BuildOpenAIToolCallIndex(messages []*openai.ChatCompletionMessage) ToolCallIndex {
	idx := make(ToolCallIndex)
	for _, message := range messages {
		for _, toolCall := range message.ToolCalls {
			if toolCall.Function != nil && toolCall.ID != "" {
				idx[toolCall.ID] = toolCall.Function.Name
			}
		}
	}
	return idx
}

// observedToolNamePattern matches the legacy textual convention some data
// sources use to embed the originating tool name inside result content, e.g.
//
//	Observation of Tool `search`: 3 hits
//
// This is a compatibility shim for malformed/legacy payloads that carry no
// call identifier; the identifier-based ToolCallIndex path is preferred
// whenever an identifier is present.
var observedToolNamePattern = regexp.MustCompile("Observation of Tool `([^`]+)`")

// ExtractObservedToolName recovers a tool name embedded textually in result
// content. Returns ok=false when the content does not follow the convention.
func ExtractObservedToolName(content string) (name string, ok bool) {
	match := observedToolNamePattern.FindStringSubmatch(content)
	if match == nil {
		return "", false
	}
	return match[1], true
}
