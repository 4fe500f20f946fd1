package adapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// schemaPatch rewrites a single tool parameter schema and returns the result.
// Patches must be idempotent: when the defect they correct is absent they
// return the schema unchanged, so repeated application is harmless.
type schemaPatch func(schema []byte) []byte

// schemaPatches corrects known mismatches between the declared parameter
// schema of specific tools and the arguments models actually produce for
// them. Keyed by tool name; each tool gets exactly one patch, and patches are
// independent of each other. New patches are added by registration here.
var schemaPatches = map[string]schemaPatch{
	"segment_anything": renameRequiredEntry("object", "object_english_name"),
	"Pira_image2image": dropStaleRequiredEntry("cfg"),
	"gemini_edit":      patchGeminiEditSchema,
	"outpaint":         renameRequiredEntry("prompt", "english_prompt"),
}

// RepairToolSchema applies the registered patch for the named tool, if any.
// The input bytes are never mutated; callers always get a fresh copy when a
// patch is registered for the name.
func RepairToolSchema(name string, schema json.RawMessage) json.RawMessage {
	patch, ok := schemaPatches[name]
	if !ok || len(schema) == 0 {
		return schema
	}
	copied := make([]byte, len(schema))
	copy(copied, schema)
	return json.RawMessage(patch(copied))
}

func renameRequiredEntry(from, to string) schemaPatch {
	return func(schema []byte) []byte {
		required := gjson.GetBytes(schema, "required")
		if !required.IsArray() {
			return schema
		}
		for i, entry := range required.Array() {
			if entry.String() == from {
				schema, _ = sjson.SetBytes(schema, fmt.Sprintf("required.%d", i), to)
			}
		}
		return schema
	}
}

// dropStaleRequiredEntry removes a required entry that has no corresponding
// property. If the property exists the required entry is legitimate and the
// schema is left alone.
func dropStaleRequiredEntry(name string) schemaPatch {
	return func(schema []byte) []byte {
		if gjson.GetBytes(schema, "properties."+escapeJSONPathKey(name)).Exists() {
			return schema
		}
		required := gjson.GetBytes(schema, "required")
		if !required.IsArray() {
			return schema
		}
		entries := required.Array()
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].String() == name {
				schema, _ = sjson.DeleteBytes(schema, fmt.Sprintf("required.%d", i))
			}
		}
		return schema
	}
}

// patchGeminiEditSchema renames the stale required entry "image" to "images"
// and collapses the nullable-union type of the images property to the single
// concrete "array" type.
func patchGeminiEditSchema(schema []byte) []byte {
	schema = renameRequiredEntry("image", "images")(schema)
	if imagesType := gjson.GetBytes(schema, "properties.images.type"); imagesType.IsArray() {
		for _, entry := range imagesType.Array() {
			if entry.String() != "null" {
				schema, _ = sjson.SetBytes(schema, "properties.images.type", entry.String())
				break
			}
		}
	}
	return schema
}

// StringifyEnumValues returns a copy of schema in which every member of every
// "enum" list is a string, descending through properties, items and
// additionalProperties. Gemini function declarations reject non-string enum
// members that other providers accept.
func StringifyEnumValues(schema json.RawMessage) json.RawMessage {
	if len(schema) == 0 {
		return schema
	}
	copied := make([]byte, len(schema))
	copy(copied, schema)
	return json.RawMessage(stringifyEnums(copied))
}

func stringifyEnums(schema []byte) []byte {
	if enum := gjson.GetBytes(schema, "enum"); enum.IsArray() {
		for i, member := range enum.Array() {
			if member.Type != gjson.String {
				schema, _ = sjson.SetBytes(schema, fmt.Sprintf("enum.%d", i), member.String())
			}
		}
	}
	if properties := gjson.GetBytes(schema, "properties"); properties.IsObject() {
		properties.ForEach(func(key, value gjson.Result) bool {
			path := "properties." + escapeJSONPathKey(key.String())
			schema, _ = sjson.SetRawBytes(schema, path, stringifyEnums([]byte(value.Raw)))
			return true
		})
	}
	for _, key := range []string{"items", "additionalProperties"} {
		if sub := gjson.GetBytes(schema, key); sub.IsObject() {
			schema, _ = sjson.SetRawBytes(schema, key, stringifyEnums([]byte(sub.Raw)))
		}
	}
	return schema
}

// escapeJSONPathKey escapes characters that gjson/sjson paths treat as
// syntax, so property names containing dots or wildcards address the literal
// key.
func escapeJSONPathKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
