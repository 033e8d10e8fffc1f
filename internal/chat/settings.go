// Package chat relays lead-generation conversations to a streaming LLM.
package chat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ActionRule maps keywords in a reply to an internal page
type ActionRule struct {
	Label    string   `yaml:"label"`
	Path     string   `yaml:"path"`
	Keywords []string `yaml:"keywords"`
}

// Settings holds the assistant prompt and the action rules
type Settings struct {
	SystemPrompt string       `yaml:"system_prompt"`
	Actions      []ActionRule `yaml:"actions"`
}

const defaultSystemPrompt = `You are the virtual assistant of an audit, tax and legal consulting firm.
Answer questions about company setup, accounting, tax compliance and our services in the visitor's language.
Be concise. When relevant, point the visitor to the setup calculator (/spain-setup-calculator),
our services (/services) or the contact page (/contact). Never give binding legal advice.`

// DefaultSettings returns the built-in prompt and action rules
func DefaultSettings() *Settings {
	return &Settings{
		SystemPrompt: defaultSystemPrompt,
		Actions: []ActionRule{
			{Label: "Setup Calculator", Path: "/spain-setup-calculator", Keywords: []string{"/spain-setup-calculator"}},
			{Label: "Book a Consultation", Path: "/contact", Keywords: []string{"/contact"}},
			{Label: "Our Services", Path: "/services", Keywords: []string{"/services"}},
			{Label: "Read the Blog", Path: "/blog", Keywords: []string{"/blog"}},
		},
	}
}

// LoadSettings reads settings from a YAML file. An empty path yields the
// defaults, and fields missing from the file keep their default values.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat settings: %w", err)
	}
	var fromFile Settings
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse chat settings %s: %w", path, err)
	}
	if fromFile.SystemPrompt != "" {
		settings.SystemPrompt = fromFile.SystemPrompt
	}
	if len(fromFile.Actions) > 0 {
		settings.Actions = fromFile.Actions
	}
	for i, a := range settings.Actions {
		if a.Label == "" || a.Path == "" {
			return nil, fmt.Errorf("chat settings: action %d needs a label and a path", i)
		}
	}
	return settings, nil
}
