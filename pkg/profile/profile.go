// Package profile provides a profile-based configuration system that allows
// different models to use different conversion and provider configurations.
package profile

import (
	"errors"
	"strings"
)

var (
	ErrNoProfileMatched  = errors.New("no profile matched for the given model")
	ErrNoProfilesDefined = errors.New("no profiles defined in configuration")
)

// Profile represents a configuration profile that can be matched against model names.
type Profile struct {
	Name    string         `yaml:"name" json:"name" mapstructure:"name"`
	Models  []string       `yaml:"models" json:"models" mapstructure:"models"`
	Target  string         `yaml:"target" json:"target" mapstructure:"target"`
	Options *OptionsConfig `yaml:"options" json:"options" mapstructure:"options"`
	Gemini  *GeminiConfig  `yaml:"gemini" json:"gemini" mapstructure:"gemini"`
}

// GetOptions safely gets the options config, tolerating a nil profile.
func (p *Profile) GetOptions() *OptionsConfig {
	if p == nil {
		return nil
	}
	return p.Options
}

// GetGemini safely gets the Gemini config, tolerating a nil profile.
func (p *Profile) GetGemini() *GeminiConfig {
	if p == nil {
		return nil
	}
	return p.Gemini
}

// GetTarget safely gets the conversion target format.
func (p *Profile) GetTarget() string {
	if p == nil {
		return ""
	}
	return p.Target
}

// OptionsConfig contains general options for request conversion.
type OptionsConfig struct {
	Models           map[string]string `yaml:"models" json:"models" mapstructure:"models"`
	FunctionCallMode string            `yaml:"function_call_mode" json:"function_call_mode" mapstructure:"function_call_mode"`
	ThinkingBudget   int               `yaml:"thinking_budget" json:"thinking_budget" mapstructure:"thinking_budget"`
	Labels           map[string]string `yaml:"labels" json:"labels" mapstructure:"labels"`
}

// GeminiConfig contains Gemini-specific configuration.
type GeminiConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"api_key" json:"api_key" mapstructure:"api_key"`
	Version string `yaml:"version" json:"version" mapstructure:"version"`
}

// ProfileManager manages a collection of profiles and provides model-to-profile matching.
type ProfileManager struct {
	profiles []*Profile // profiles in order of priority
}

// NewProfileManager creates a new empty ProfileManager.
func NewProfileManager() *ProfileManager {
	return &ProfileManager{
		profiles: make([]*Profile, 0),
	}
}

// AddProfile adds a profile to the manager.
func (pm *ProfileManager) AddProfile(p *Profile) {
	pm.profiles = append(pm.profiles, p)
}

// Match finds the first profile that matches the given model name.
// Returns ErrNoProfileMatched if no profile matches.
func (pm *ProfileManager) Match(model string) (*Profile, error) {
	if len(pm.profiles) == 0 {
		return nil, ErrNoProfilesDefined
	}
	for _, p := range pm.profiles {
		for _, pattern := range p.Models {
			if matchPattern(pattern, model) {
				return p, nil
			}
		}
	}
	return nil, ErrNoProfileMatched
}

// Profiles returns all registered profiles.
func (pm *ProfileManager) Profiles() []*Profile {
	return pm.profiles
}

// matchPattern checks if a model name matches a pattern.
// Supports:
// - "*" matches everything
// - "prefix*" matches any model starting with "prefix"
// - exact match for patterns without wildcards
func matchPattern(pattern, model string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(model, prefix)
	}
	return pattern == model
}
