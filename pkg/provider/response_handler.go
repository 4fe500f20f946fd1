package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ewangz/agentconv/pkg/datatypes/gemini"
	"github.com/ewangz/agentconv/pkg/utils"
)

const (
	ErrorTypeHTTP          = "HTTPError"
	ErrorTypeTimeout       = "Timeout"
	ErrorTypePromptBlocked = "PromptBlocked"
)

// Result is the normalized outcome of one generateContent call: exactly one
// of Response or Error is meaningful, discriminated by Error being empty.
type Result struct {
	Response     *gemini.GenerateContentResponse `json:"response,omitempty"`
	Error        string                          `json:"error,omitempty"`
	ErrorType    string                          `json:"error_type,omitempty"`
	FinishReason string                          `json:"finish_reason,omitempty"`
	Usage        *Usage                          `json:"usage,omitempty"`
}

func (r *Result) OK() bool {
	return r.Error == ""
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

func handleGeminiResponse(httpResp *http.Response) *Result {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &Result{Error: err.Error(), ErrorType: ErrorTypeHTTP}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if utils.IsContentType(httpResp.Header, "application/json") {
			var apiError gemini.Error
			if err = json.Unmarshal(body, &apiError); err == nil && apiError.Inner.Message != "" {
				apiError.SetStatusCode(httpResp.StatusCode)
				return &Result{Error: apiError.Error(), ErrorType: ErrorTypeHTTP}
			}
		}
		return &Result{
			Error:     fmt.Sprintf("unexpected status %d: %s", httpResp.StatusCode, truncate(body, 512)),
			ErrorType: ErrorTypeHTTP,
		}
	}
	var response gemini.GenerateContentResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return &Result{
			Error:     fmt.Sprintf("decode generateContent response: %s", err),
			ErrorType: ErrorTypeHTTP,
		}
	}
	if feedback := response.PromptFeedback; feedback != nil && feedback.BlockReason != "" {
		return &Result{
			Error:     fmt.Sprintf("prompt blocked: %s", feedback.BlockReason),
			ErrorType: ErrorTypePromptBlocked,
		}
	}
	result := &Result{Response: &response}
	if len(response.Candidates) > 0 {
		result.FinishReason = string(response.Candidates[0].FinishReason)
	}
	if metadata := response.UsageMetadata; metadata != nil {
		result.Usage = &Usage{
			PromptTokens:     metadata.PromptTokenCount,
			CompletionTokens: metadata.CandidatesTokenCount,
			TotalTokens:      metadata.TotalTokenCount,
		}
	}
	return result
}

func truncate(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
