// Package adapter converts conversational request payloads between the
// Claude, OpenAI and Gemini wire formats: role mapping, content block
// translation, tool declaration translation, system instruction extraction
// and tool call correlation, finished by a schema repair pass over tool
// declarations.
//
// Conversions are pure: the source request is never mutated, and each call
// builds its own tool call index and discards it at return.
package adapter

import "encoding/json"

type ConvertRequestOptions struct {
	DisableSchemaRepair bool
}

type ConvertRequestOption func(*ConvertRequestOptions)

// DisableSchemaRepair skips the schema repair pass over converted tool
// declarations.
func DisableSchemaRepair() ConvertRequestOption {
	return func(o *ConvertRequestOptions) {
		o.DisableSchemaRepair = true
	}
}

var emptyJSONObject = json.RawMessage("{}")

// functionCallArguments normalizes a stringified tool call arguments field
// back to a structured value. Anything that is not valid JSON becomes an
// empty object rather than failing the conversion.
func functionCallArguments(arguments string) json.RawMessage {
	if arguments == "" || !json.Valid([]byte(arguments)) {
		return emptyJSONObject
	}
	return json.RawMessage(arguments)
}

// stringifyFunctionCallArguments is the reverse of functionCallArguments: it
// renders structured arguments as the single string field required by the
// OpenAI tool call shape.
func stringifyFunctionCallArguments(args json.RawMessage) string {
	if len(args) == 0 {
		return "{}"
	}
	return string(args)
}
