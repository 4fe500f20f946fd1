package adapter

import (
	"context"
	"strings"

	"github.com/ewangz/agentconv/pkg/datatypes/gemini"
	"github.com/ewangz/agentconv/pkg/datatypes/openai"
	"github.com/ewangz/agentconv/pkg/utils"
)

func ConvertGeminiRequestToOpenAIRequest(
	ctx context.Context,
	src *gemini.GenerateContentRequest,
	options ...ConvertRequestOption,
) (dst *openai.ChatCompletionRequest) {
	convertOptions := &ConvertRequestOptions{}
	for _, applyOption := range options {
		applyOption(convertOptions)
	}
	dst = &openai.ChatCompletionRequest{}
	for _, srcTool := range src.Tools {
		for _, declaration := range srcTool.FunctionDeclarations {
			parameters := declaration.Parameters
			if !convertOptions.DisableSchemaRepair {
				parameters = RepairToolSchema(declaration.Name, parameters)
			}
			dst.Tools = append(dst.Tools, &openai.ChatCompletionTool{
				Type: openai.ChatCompletionMessageToolCallTypeFunction,
				Function: &openai.ChatCompletionFunction{
					Name:        declaration.Name,
					Description: declaration.Description,
					Parameters:  parameters,
				},
			})
		}
	}
	dst.Messages = make([]*openai.ChatCompletionMessage, 0, len(src.Contents)+1)
	// The top-level instruction demotes back to a leading system turn.
	if instruction := src.SystemInstruction; instruction != nil {
		if text := flattenGeminiTextParts(instruction.Parts); text != "" {
			dst.Messages = append(dst.Messages, &openai.ChatCompletionMessage{
				Role:    openai.ChatCompletionMessageRoleSystem,
				Content: openai.Text(text),
			})
		}
	}
	for _, srcContent := range src.Contents {
		dstRole := openai.ChatCompletionMessageRoleUser
		if srcContent.Role == gemini.ContentRoleModel {
			dstRole = openai.ChatCompletionMessageRoleAssistant
		}
		var (
			dstParts     []*openai.ChatCompletionMessageContentPart
			dstToolCalls []*openai.ChatCompletionToolCall
		)
		for _, srcPart := range srcContent.Parts {
			switch {
			case srcPart.FunctionResponse != nil:
				// Function responses become standalone tool messages in both
				// roles: the user turn is Gemini's native placement, and a
				// model turn carrying only responses is reinterpreted as the
				// tool role. Content collected so far stays in front of it.
				if message := buildOpenAIMessage(dstRole, dstParts, dstToolCalls); message != nil {
					dst.Messages = append(dst.Messages, message)
					dstParts, dstToolCalls = nil, nil
				}
				response := srcPart.FunctionResponse
				name := response.Name
				if name == "" {
					name = UnknownToolName
				}
				var resultText string
				if response.Response != nil {
					resultText = response.Response.Result
				}
				dst.Messages = append(dst.Messages, &openai.ChatCompletionMessage{
					Role:       openai.ChatCompletionMessageRoleTool,
					ToolCallID: response.ID,
					Name:       name,
					Content:    openai.Text(resultText),
				})
			case srcPart.FunctionCall != nil:
				call := srcPart.FunctionCall
				callID := call.ID
				if callID == "" {
					callID = utils.GenerateID("call")
				}
				dstToolCalls = append(dstToolCalls, &openai.ChatCompletionToolCall{
					ID:   callID,
					Type: openai.ChatCompletionMessageToolCallTypeFunction,
					Function: &openai.ChatCompletionMessageToolCallFunction{
						Name:      call.Name,
						Arguments: stringifyFunctionCallArguments(call.Args),
					},
				})
			case srcPart.InlineData != nil:
				dstParts = append(dstParts, &openai.ChatCompletionMessageContentPart{
					Type: openai.ChatCompletionMessageContentPartTypeImage,
					ImageUrl: &openai.ChatCompletionMessageContentPartImageUrl{
						Url: utils.FormatDataURL(srcPart.InlineData.MimeType, srcPart.InlineData.Data),
					},
				})
			case srcPart.Text != "":
				dstParts = append(dstParts, &openai.ChatCompletionMessageContentPart{
					Type: openai.ChatCompletionMessageContentPartTypeText,
					Text: srcPart.Text,
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

func flattenGeminiTextParts(parts []*gemini.Part) string {
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}
