// Package provider performs the outbound generateContent call against the
// Gemini API. It consumes already-converted requests, decorates them with the
// profile's caller options and normalizes every outcome into a Result so
// callers never branch on transport details.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ewangz/agentconv/pkg/datatypes/gemini"
	"github.com/ewangz/agentconv/pkg/profile"
)

const defaultTimeout = 5 * time.Minute

type Provider struct {
	client *http.Client
}

func NewProvider(client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Provider{client: client}
}

// GenerateGeminiContent posts the request to the model's generateContent
// endpoint. Transport failures, non-2xx statuses and blocked prompts come
// back as a normalized Result, never as an error; the error return covers
// only request construction.
func (p *Provider) GenerateGeminiContent(
	ctx context.Context,
	model string,
	req *gemini.GenerateContentRequest,
	opts ...RequestOption,
) (*Result, error) {
	prof, _ := profile.FromContext(ctx)
	decorated, version := decorateGeminiRequest(prof, req)
	body, err := json.Marshal(decorated)
	if err != nil {
		return nil, fmt.Errorf("encode generateContent request: %w", err)
	}
	url := fmt.Sprintf("%s/%s/models/%s:generateContent",
		prof.GetGemini().GetBaseURL(), version, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build generateContent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey := prof.GetGemini().GetAPIKey(); apiKey != "" {
		httpReq.Header.Set("X-Goog-Api-Key", apiKey)
	}
	// The payload is attached as an option so a later option can still
	// replace it wholesale, and the request keeps a replayable GetBody.
	for _, applyOption := range append([]RequestOption{ReplaceBody(body)}, opts...) {
		applyOption(httpReq)
	}
	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return &Result{Error: err.Error(), ErrorType: ErrorTypeTimeout}, nil
		}
		return &Result{Error: err.Error(), ErrorType: ErrorTypeHTTP}, nil
	}
	defer httpResp.Body.Close()
	return handleGeminiResponse(httpResp), nil
}

// decorateGeminiRequest applies the profile's caller options to a shallow
// copy of the request: function calling mode (uppercased, only when tools are
// present and the mode is not the default), thinking budget and request
// labels. The validated mode is only served by the v1beta1 surface, so it
// also selects the API version.
func decorateGeminiRequest(
	prof *profile.Profile,
	req *gemini.GenerateContentRequest,
) (*gemini.GenerateContentRequest, string) {
	decorated := *req
	version := prof.GetGemini().GetVersion()
	if mode := prof.GetOptions().GetFunctionCallMode(); mode != "auto" && len(decorated.Tools) > 0 {
		decorated.ToolConfig = &gemini.ToolConfig{
			FunctionCallingConfig: &gemini.FunctionCallingConfig{
				Mode: gemini.FunctionCallingMode(strings.ToUpper(mode)),
			},
		}
		if strings.EqualFold(mode, string(gemini.FunctionCallingModeValidated)) {
			version = "v1beta1"
		}
	}
	if budget := prof.GetOptions().GetThinkingBudget(); budget > 0 {
		decorated.GenerationConfig = &gemini.GenerationConfig{
			ThinkingConfig: &gemini.ThinkingConfig{ThinkingBudget: budget},
		}
	}
	if labels := prof.GetOptions().GetLabels(); len(labels) > 0 {
		decorated.Labels = labels
	}
	return &decorated, version
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return os.IsTimeout(err)
}
