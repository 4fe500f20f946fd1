package profile

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ewangz/agentconv/pkg/utils/delimiter"
)

// RootConfig represents the root configuration structure.
type RootConfig struct {
	Profiles map[string]*ProfileConfig `yaml:"profiles" json:"profiles" mapstructure:"profiles"`
	Snapshot string                    `yaml:"snapshot" json:"snapshot" mapstructure:"snapshot"`
}

// ProfileConfig represents a profile configuration in the config file.
// This is similar to Profile but uses the config file structure.
type ProfileConfig struct {
	Models  []string       `yaml:"models" json:"models" mapstructure:"models"`
	Target  string         `yaml:"target" json:"target" mapstructure:"target"`
	Options *OptionsConfig `yaml:"options" json:"options" mapstructure:"options"`
	Gemini  *GeminiConfig  `yaml:"gemini" json:"gemini" mapstructure:"gemini"`
}

// envVarRegex matches environment variable references like ${VAR_NAME}
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnv expands environment variable references in a string.
// Supports ${VAR_NAME} syntax.
func ExpandEnv(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Return original if not found
	})
}

// LoadFromViper loads profiles from a viper instance.
// The profiles section should be structured as:
//
//	profiles:
//	  profile-name:
//	    models: ["pattern*"]
//	    target: "gemini"
//	    ...
func LoadFromViper(v *viper.Viper) (*ProfileManager, error) {
	pm := NewProfileManager()
	profilesMap := v.GetStringMap("profiles")
	if len(profilesMap) == 0 {
		return nil, ErrNoProfilesDefined
	}
	// Get profile names in order from the raw config
	// Since viper doesn't preserve order, we need to read the raw config
	profileOrder := getProfileOrder(v)
	for _, name := range profileOrder {
		key := delimiter.ViperKey("profiles", name)
		p := &Profile{
			Name:    name,
			Models:  v.GetStringSlice(delimiter.ViperKey(key, "models")),
			Target:  v.GetString(delimiter.ViperKey(key, "target")),
			Options: loadOptionsConfig(v, delimiter.ViperKey(key, "options")),
			Gemini:  loadGeminiConfig(v, delimiter.ViperKey(key, "gemini")),
		}
		// Expand environment variables in API keys and URLs
		if p.Gemini != nil {
			p.Gemini.APIKey = ExpandEnv(p.Gemini.APIKey)
			p.Gemini.BaseURL = ExpandEnv(p.Gemini.BaseURL)
		}
		pm.AddProfile(p)
	}
	return pm, nil
}

// getProfileOrder attempts to get profile names in their definition order.
// Falls back to map iteration order if order cannot be determined.
func getProfileOrder(v *viper.Viper) []string {
	// Try to get order from the config file
	configFile := v.ConfigFileUsed()
	if configFile != "" {
		if order, err := extractProfileOrderFromFile(configFile); err == nil && len(order) > 0 {
			return order
		}
	}
	// Fallback to map keys (unordered)
	profilesMap := v.GetStringMap("profiles")
	names := make([]string, 0, len(profilesMap))
	for name := range profilesMap {
		names = append(names, name)
	}
	return names
}

// extractProfileOrderFromFile reads the config file and extracts profile names in order.
func extractProfileOrderFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Profiles yaml.Node `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Profiles.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("profiles is not a mapping")
	}
	var names []string
	// In a mapping node, content alternates between key and value
	for i := 0; i < len(raw.Profiles.Content); i += 2 {
		if raw.Profiles.Content[i].Kind == yaml.ScalarNode {
			names = append(names, raw.Profiles.Content[i].Value)
		}
	}
	return names, nil
}

func loadOptionsConfig(v *viper.Viper, key string) *OptionsConfig {
	if !v.IsSet(key) {
		return nil
	}
	return &OptionsConfig{
		Models:           v.GetStringMapString(delimiter.ViperKey(key, "models")),
		FunctionCallMode: v.GetString(delimiter.ViperKey(key, "function_call_mode")),
		ThinkingBudget:   v.GetInt(delimiter.ViperKey(key, "thinking_budget")),
		Labels:           v.GetStringMapString(delimiter.ViperKey(key, "labels")),
	}
}

func loadGeminiConfig(v *viper.Viper, key string) *GeminiConfig {
	if !v.IsSet(key) {
		return nil
	}
	return &GeminiConfig{
		BaseURL: v.GetString(delimiter.ViperKey(key, "base_url")),
		APIKey:  v.GetString(delimiter.ViperKey(key, "api_key")),
		Version: v.GetString(delimiter.ViperKey(key, "version")),
	}
}

// GetSnapshotConfig returns the snapshot configuration from viper.
func GetSnapshotConfig(v *viper.Viper) string {
	return v.GetString("snapshot")
}

// GetModels safely gets the models map.
func (o *OptionsConfig) GetModels() map[string]string {
	if o == nil || o.Models == nil {
		return make(map[string]string)
	}
	return o.Models
}

// GetFunctionCallMode safely gets the function call mode with a default.
func (o *OptionsConfig) GetFunctionCallMode() string {
	if o == nil || o.FunctionCallMode == "" {
		return "auto"
	}
	return o.FunctionCallMode
}

// GetThinkingBudget safely gets the thinking budget token count.
func (o *OptionsConfig) GetThinkingBudget() int {
	if o == nil {
		return 0
	}
	return o.ThinkingBudget
}

// GetLabels safely gets the request labels map.
func (o *OptionsConfig) GetLabels() map[string]string {
	if o == nil {
		return nil
	}
	return o.Labels
}

// GetBaseURL safely gets the Gemini base URL with a default.
func (g *GeminiConfig) GetBaseURL() string {
	if g == nil || g.BaseURL == "" {
		return "https://generativelanguage.googleapis.com"
	}
	return strings.TrimSuffix(g.BaseURL, "/")
}

// GetAPIKey safely gets the Gemini API key.
func (g *GeminiConfig) GetAPIKey() string {
	if g == nil {
		return ""
	}
	return g.APIKey
}

// GetVersion safely gets the Gemini API version with a default.
func (g *GeminiConfig) GetVersion() string {
	if g == nil || g.Version == "" {
		return "v1beta"
	}
	return g.Version
}
