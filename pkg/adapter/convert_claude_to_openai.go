package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ewangz/agentconv/pkg/datatypes/claude"
	"github.com/ewangz/agentconv/pkg/datatypes/openai"
	"github.com/ewangz/agentconv/pkg/profile"
)

func ConvertClaudeRequestToOpenAIRequest(
	ctx context.Context,
	src *claude.GenerateMessageRequest,
	options ...ConvertRequestOption,
) (dst *openai.ChatCompletionRequest) {
	prof, _ := profile.FromContext(ctx)
	convertOptions := &ConvertRequestOptions{}
	for _, applyOption := range options {
		applyOption(convertOptions)
	}
	dst = &openai.ChatCompletionRequest{
		Model: src.Model,
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = lo.ToPtr(src.MaxTokens)
	}
	if src.Temperature != nil {
		dst.Temperature = lo.ToPtr(*src.Temperature)
	}
	if src.TopP != nil {
		dst.TopP = lo.ToPtr(*src.TopP)
	}
	if modelMapper := prof.GetOptions().GetModels(); modelMapper != nil {
		if targetModel, ok := modelMapper[dst.Model]; ok {
			dst.Model = targetModel
		}
	}
	if len(src.Tools) > 0 {
		dst.Tools = make([]*openai.ChatCompletionTool, 0, len(src.Tools))
		for _, srcTool := range src.Tools {
			parameters := srcTool.InputSchema
			if !convertOptions.DisableSchemaRepair {
				parameters = RepairToolSchema(srcTool.Name, parameters)
			}
			dst.Tools = append(dst.Tools, &openai.ChatCompletionTool{
				Type: openai.ChatCompletionMessageToolCallTypeFunction,
				Function: &openai.ChatCompletionFunction{
					Name:        srcTool.Name,
					Description: srcTool.Description,
					Parameters:  parameters,
				},
			})
		}
	}
	toolCalls := BuildClaudeToolCallIndex(src.Messages)
	dst.Messages = make([]*openai.ChatCompletionMessage, 0, len(src.Messages)+1)
	if systemText := src.System.Text(); systemText != "" {
		dst.Messages = append(dst.Messages, &openai.ChatCompletionMessage{
			Role:    openai.ChatCompletionMessageRoleSystem,
			Content: openai.Text(systemText),
		})
	}
	for _, srcMessage := range src.Messages {
		var dstRole openai.ChatCompletionRole
		switch srcMessage.Role {
		case claude.MessageRoleAssistant:
			dstRole = openai.ChatCompletionMessageRoleAssistant
		case claude.MessageRoleSystem:
			dstRole = openai.ChatCompletionMessageRoleSystem
		case claude.MessageRoleTool:
			dstRole = openai.ChatCompletionMessageRoleTool
		default:
			// Unrecognized roles fall back to user rather than failing.
			dstRole = openai.ChatCompletionMessageRoleUser
		}
		if srcMessage.Role == claude.MessageRoleTool {
			// Legacy tool-role message: text content, function name on the
			// message itself or embedded in the content.
			resultText := srcMessage.Content.Text()
			name := srcMessage.Name
			if name == "" {
				if observed, ok := ExtractObservedToolName(resultText); ok {
					name = observed
				} else {
					name = UnknownToolName
				}
			}
			dst.Messages = append(dst.Messages, &openai.ChatCompletionMessage{
				Role:    openai.ChatCompletionMessageRoleTool,
				Name:    name,
				Content: openai.Text(resultText),
			})
			continue
		}
		var (
			dstParts     []*openai.ChatCompletionMessageContentPart
			dstToolCalls []*openai.ChatCompletionToolCall
		)
		for _, srcContent := range srcMessage.Content {
			switch srcContent.Type {
			case claude.MessageContentTypeText:
				dstParts = append(dstParts, &openai.ChatCompletionMessageContentPart{
					Type: openai.ChatCompletionMessageContentPartTypeText,
					Text: srcContent.Text,
				})
			case claude.MessageContentTypeImage:
				if url, ok := claudeImageSourceToURL(srcContent.Source); ok {
					dstParts = append(dstParts, &openai.ChatCompletionMessageContentPart{
						Type:     openai.ChatCompletionMessageContentPartTypeImage,
						ImageUrl: &openai.ChatCompletionMessageContentPartImageUrl{Url: url},
					})
				}
			case claude.MessageContentTypeToolUse:
				dstToolCalls = append(dstToolCalls, &openai.ChatCompletionToolCall{
					ID:   srcContent.ID,
					Type: openai.ChatCompletionMessageToolCallTypeFunction,
					Function: &openai.ChatCompletionMessageToolCallFunction{
						Name:      srcContent.Name,
						Arguments: stringifyFunctionCallArguments(srcContent.Input),
					},
				})
			case claude.MessageContentTypeToolResult:
				// Each tool result becomes its own tool message since OpenAI
				// allows only one tool_call_id per message. Content collected
				// so far stays in front of it.
				if message := buildOpenAIMessage(dstRole, dstParts, dstToolCalls); message != nil {
					dst.Messages = append(dst.Messages, message)
					dstParts, dstToolCalls = nil, nil
				}
				resultText := flattenClaudeToolResultContents(srcContent.Content)
				dst.Messages = append(dst.Messages, &openai.ChatCompletionMessage{
					Role:       openai.ChatCompletionMessageRoleTool,
					ToolCallID: srcContent.ToolUseID,
					Name:       toolCalls.ResolveWithContent(srcContent.ToolUseID, resultText),
					Content:    openai.Text(resultText),
				})
			}
		}
		if len(dstToolCalls) > 0 {
			dstRole = openai.ChatCompletionMessageRoleAssistant
		}
		if message := buildOpenAIMessage(dstRole, dstParts, dstToolCalls); message != nil {
			dst.Messages = append(dst.Messages, message)
		}
	}
	return dst
}

// buildOpenAIMessage assembles one message from accumulated content parts and
// tool calls, collapsing a lone text part to plain string content. Returns
// nil when there is nothing to emit.
func buildOpenAIMessage(
	role openai.ChatCompletionRole,
	parts []*openai.ChatCompletionMessageContentPart,
	toolCalls []*openai.ChatCompletionToolCall,
) *openai.ChatCompletionMessage {
	if len(parts) == 0 && len(toolCalls) == 0 {
		return nil
	}
	message := &openai.ChatCompletionMessage{
		Role:      role,
		ToolCalls: toolCalls,
	}
	if len(parts) == 1 && parts[0].Type == openai.ChatCompletionMessageContentPartTypeText {
		message.Content = openai.Text(parts[0].Text)
	} else if len(parts) > 0 {
		message.Content = &openai.ChatCompletionMessageContent{
			Type:  openai.ChatCompletionMessageContentTypeParts,
			Parts: parts,
		}
	}
	return message
}

// claudeImageSourceToURL renders an image source as a URL the OpenAI format
// accepts: inline base64 sources become data URLs, URL sources pass through.
func claudeImageSourceToURL(source *claude.MessageContentSource) (string, bool) {
	if source == nil {
		return "", false
	}
	switch source.Type {
	case claude.MessageContentSourceTypeURL:
		return source.URL, source.URL != ""
	default:
		if source.Data == "" {
			return "", false
		}
		return fmt.Sprintf("data:%s;%s,%s", source.MediaType, source.Type, source.Data), true
	}
}

// flattenClaudeToolResultContents renders tool result content blocks as a
// single string. Images degrade to a bracketed reference so they are never
// silently dropped.
func flattenClaudeToolResultContents(contents claude.MessageContents) string {
	var sb strings.Builder
	for _, content := range contents {
		switch content.Type {
		case claude.MessageContentTypeText:
			sb.WriteString(content.Text)
		case claude.MessageContentTypeImage:
			if url, ok := claudeImageSourceToURL(content.Source); ok {
				fmt.Fprintf(&sb, "[Image: %s]", url)
			}
		}
	}
	return sb.String()
}
