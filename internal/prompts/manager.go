package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"deepdive/interview/internal/llm"
)

// embeds all .yaml files in the templates folder at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// Builder is the interface the classifiers and the summary assembler consume.
type Builder interface {
	BuildMessages(mode string, data map[string]string) ([]llm.Message, error)
	Modes() []string
}

// promptTemplate mirrors the yaml file layout: one system prompt and one user
// prompt per mode.
type promptTemplate struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type Manager struct {
	prompts map[string]promptTemplate // mode -> template
}

// NewManager loads every embedded template.
func NewManager() (*Manager, error) {
	pm := &Manager{
		prompts: make(map[string]promptTemplate),
	}
	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return pm, nil
}

// BuildMessages renders the mode's system and user prompts, substituting
// every {{.Key}} placeholder from data.
func (pm *Manager) BuildMessages(mode string, data map[string]string) ([]llm.Message, error) {
	tpl, exists := pm.prompts[mode]
	if !exists {
		return nil, fmt.Errorf("template not found for mode: %s", mode)
	}

	// Simple string replacement instead of template execution
	render := func(s string) string {
		for key, value := range data {
			s = strings.ReplaceAll(s, "{{."+key+"}}", value)
		}
		return strings.TrimSpace(s)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: render(tpl.System)},
		{Role: llm.RoleUser, Content: render(tpl.User)},
	}, nil
}

// Modes lists the loaded template names.
func (pm *Manager) Modes() []string {
	modes := make([]string, 0, len(pm.prompts))
	for mode := range pm.prompts {
		modes = append(modes, mode)
	}
	return modes
}

func (pm *Manager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var tpl promptTemplate
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}
		if tpl.System == "" || tpl.User == "" {
			return fmt.Errorf("template %s must define both system and user prompts", entry.Name())
		}

		pm.prompts[strings.TrimSuffix(entry.Name(), ".yaml")] = tpl
	}

	if len(pm.prompts) == 0 {
		return fmt.Errorf("no prompt templates found")
	}

	return nil
}
