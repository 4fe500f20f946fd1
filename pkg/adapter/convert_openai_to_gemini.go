package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewangz/agentconv/pkg/datatypes/gemini"
	"github.com/ewangz/agentconv/pkg/datatypes/openai"
	"github.com/ewangz/agentconv/pkg/utils"
)

func ConvertOpenAIRequestToGeminiRequest(
	ctx context.Context,
	src *openai.ChatCompletionRequest,
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
			if srcTool.Function == nil {
				continue
			}
			parameters := srcTool.Function.Parameters
			if !convertOptions.DisableSchemaRepair {
				parameters = RepairToolSchema(srcTool.Function.Name, parameters)
			}
			declarations = append(declarations, &gemini.FunctionDeclaration{
				Name:        srcTool.Function.Name,
				Description: srcTool.Function.Description,
				Parameters:  StringifyEnumValues(parameters),
			})
		}
		if len(declarations) > 0 {
			dst.Tools = []*gemini.Tool{{FunctionDeclarations: declarations}}
		}
	}
	toolCalls := BuildOpenAIToolCallIndex(src.Messages)
	systemTexts := make([]string, 0, 1)
	dst.Contents = make([]*gemini.Content, 0, len(src.Messages))
	for _, srcMessage := range src.Messages {
		switch srcMessage.Role {
		case openai.ChatCompletionMessageRoleSystem:
			if systemText := srcMessage.Content.PlainText(); systemText != "" {
				systemTexts = append(systemTexts, systemText)
			}
		case openai.ChatCompletionMessageRoleAssistant:
			dstParts := make([]*gemini.Part, 0, len(srcMessage.ToolCalls)+1)
			if text := srcMessage.Content.PlainText(); text != "" {
				dstParts = append(dstParts, gemini.TextPart(text))
			}
			for _, toolCall := range srcMessage.ToolCalls {
				if toolCall.Function == nil {
					continue
				}
				dstParts = append(dstParts, &gemini.Part{
					FunctionCall: &gemini.FunctionCall{
						ID:   toolCall.ID,
						Name: toolCall.Function.Name,
						Args: functionCallArguments(toolCall.Function.Arguments),
					},
				})
			}
			if len(dstParts) > 0 {
				dst.Contents = append(dst.Contents, &gemini.Content{
					Role:  gemini.ContentRoleModel,
					Parts: dstParts,
				})
			}
		case openai.ChatCompletionMessageRoleTool:
			resultText := srcMessage.Content.PlainText()
			dst.Contents = append(dst.Contents, &gemini.Content{
				Role: gemini.ContentRoleUser,
				Parts: []*gemini.Part{{
					FunctionResponse: &gemini.FunctionResponse{
						ID:       srcMessage.ToolCallID,
						Name:     toolCalls.ResolveWithContent(srcMessage.ToolCallID, resultText),
						Response: &gemini.FunctionResponsePayload{Result: resultText},
					},
				}},
			})
		default:
			// User and any unrecognized role map to the user turn.
			dstParts := convertOpenAIContentToGeminiParts(srcMessage.Content)
			if len(dstParts) > 0 {
				dst.Contents = append(dst.Contents, &gemini.Content{
					Role:  gemini.ContentRoleUser,
					Parts: dstParts,
				})
			}
		}
	}
	if len(systemTexts) > 0 {
		dst.SystemInstruction = &gemini.Content{
			Parts: []*gemini.Part{gemini.TextPart(strings.Join(systemTexts, "\n"))},
		}
	}
	return dst
}

// convertOpenAIContentToGeminiParts translates message content into Gemini
// parts. Data URL images become inline blobs; plain URL images have no Gemini
// equivalent and degrade to a bracketed text reference.
func convertOpenAIContentToGeminiParts(content *openai.ChatCompletionMessageContent) []*gemini.Part {
	if content == nil {
		return nil
	}
	if content.IsText() {
		if content.Text == "" {
			return nil
		}
		return []*gemini.Part{gemini.TextPart(content.Text)}
	}
	parts := make([]*gemini.Part, 0, len(content.Parts))
	for _, srcPart := range content.Parts {
		switch srcPart.Type {
		case openai.ChatCompletionMessageContentPartTypeText:
			if srcPart.Text != "" {
				parts = append(parts, gemini.TextPart(srcPart.Text))
			}
		case openai.ChatCompletionMessageContentPartTypeImage:
			if srcPart.ImageUrl == nil || srcPart.ImageUrl.Url == "" {
				continue
			}
			if mediaType, data, ok := utils.ParseDataURL(srcPart.ImageUrl.Url); ok {
				parts = append(parts, &gemini.Part{
					InlineData: &gemini.Blob{MimeType: mediaType, Data: data},
				})
			} else {
				parts = append(parts, gemini.TextPart(fmt.Sprintf("[Image: %s]", srcPart.ImageUrl.Url)))
			}
		}
	}
	return parts
}
