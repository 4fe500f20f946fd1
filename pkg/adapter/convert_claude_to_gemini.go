package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewangz/agentconv/pkg/datatypes/claude"
	"github.com/ewangz/agentconv/pkg/datatypes/gemini"
)

func ConvertClaudeRequestToGeminiRequest(
	ctx context.Context,
	src *claude.GenerateMessageRequest,
	options ...ConvertRequestOption,
) (dst *gemini.GenerateContentRequest) {
	convertOptions := &ConvertRequestOptions{}
	for _, applyOption := range options {
		applyOption(convertOptions)
	}
	dst = &gemini.GenerateContentRequest{}
	if len(src.Tools) > 0 {
		declarations := make([]*gemini.FunctionDeclaration, 0, len(src.Tools))
		for _, srcTool := range src.Tools {
			parameters := srcTool.InputSchema
			if !convertOptions.DisableSchemaRepair {
				parameters = RepairToolSchema(srcTool.Name, parameters)
			}
			declarations = append(declarations, &gemini.FunctionDeclaration{
				Name:        srcTool.Name,
				Description: srcTool.Description,
				Parameters:  StringifyEnumValues(parameters),
			})
		}
		dst.Tools = []*gemini.Tool{{FunctionDeclarations: declarations}}
	}
	toolCalls := BuildClaudeToolCallIndex(src.Messages)
	systemTexts := make([]string, 0, 1)
	if systemText := src.System.Text(); systemText != "" {
		systemTexts = append(systemTexts, systemText)
	}
	dst.Contents = make([]*gemini.Content, 0, len(src.Messages))
	for _, srcMessage := range src.Messages {
		if srcMessage.Role == claude.MessageRoleSystem {
			// System turns are extracted to the top-level instruction and
			// never appear in the contents.
			if systemText := srcMessage.Content.Text(); systemText != "" {
				systemTexts = append(systemTexts, systemText)
			}
			continue
		}
		if srcMessage.Role == claude.MessageRoleTool {
			// Gemini has no tool role; legacy tool-role messages collapse
			// onto a model turn with the tool name preserved textually.
			resultText := srcMessage.Content.Text()
			name := srcMessage.Name
			if name == "" {
				if observed, ok := ExtractObservedToolName(resultText); ok {
					name = observed
				} else {
					name = UnknownToolName
				}
			}
			dst.Contents = append(dst.Contents, &gemini.Content{
				Role:  gemini.ContentRoleModel,
				Parts: []*gemini.Part{gemini.TextPart(fmt.Sprintf("Tool Response (%s):\n%s", name, resultText))},
			})
			continue
		}
		dstRole := gemini.ContentRoleUser
		if srcMessage.Role == claude.MessageRoleAssistant {
			dstRole = gemini.ContentRoleModel
		}
		dstParts := make([]*gemini.Part, 0, len(srcMessage.Content))
		for _, srcContent := range srcMessage.Content {
			switch srcContent.Type {
			case claude.MessageContentTypeText:
				dstParts = append(dstParts, gemini.TextPart(srcContent.Text))
			case claude.MessageContentTypeImage:
				if part := claudeImageSourceToGeminiPart(srcContent.Source); part != nil {
					dstParts = append(dstParts, part)
				}
			case claude.MessageContentTypeToolUse:
				args := srcContent.Input
				if len(args) == 0 {
					args = emptyJSONObject
				}
				dstParts = append(dstParts, &gemini.Part{
					FunctionCall: &gemini.FunctionCall{
						ID:   srcContent.ID,
						Name: srcContent.Name,
						Args: args,
					},
				})
			case claude.MessageContentTypeToolResult:
				resultText := flattenClaudeToolResultContents(srcContent.Content)
				dstParts = append(dstParts, &gemini.Part{
					FunctionResponse: &gemini.FunctionResponse{
						ID:       srcContent.ToolUseID,
						Name:     toolCalls.ResolveWithContent(srcContent.ToolUseID, resultText),
						Response: &gemini.FunctionResponsePayload{Result: resultText},
					},
				})
			}
		}
		// Turns that translated to nothing are dropped; Gemini rejects
		// contents with empty parts.
		if len(dstParts) > 0 {
			dst.Contents = append(dst.Contents, &gemini.Content{
				Role:  dstRole,
				Parts: dstParts,
			})
		}
	}
	if len(systemTexts) > 0 {
		dst.SystemInstruction = &gemini.Content{
			Parts: []*gemini.Part{gemini.TextPart(strings.Join(systemTexts, "\n"))},
		}
	}
	return dst
}

// claudeImageSourceToGeminiPart converts an image source to the Gemini inline
// form. URL-only sources have no Gemini equivalent and degrade to a bracketed
// text reference, never silently dropped.
func claudeImageSourceToGeminiPart(source *claude.MessageContentSource) *gemini.Part {
	if source == nil {
		return nil
	}
	switch source.Type {
	case claude.MessageContentSourceTypeURL:
		if source.URL == "" {
			return nil
		}
		return gemini.TextPart(fmt.Sprintf("[Image: %s]", source.URL))
	default:
		if source.Data == "" {
			return nil
		}
		return &gemini.Part{
			InlineData: &gemini.Blob{
				MimeType: source.MediaType,
				Data:     source.Data,
			},
		}
	}
}
