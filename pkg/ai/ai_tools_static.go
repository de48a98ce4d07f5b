package ai

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticConfig describes tools with a fixed, canned answer. They live in
// a YAML file so operators can add FAQ-style answers (branch codes,
// support numbers) without a deploy.
type StaticConfig struct {
	Tools []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Result      string `yaml:"result"`
	} `yaml:"tools"`
}

func (f *ToolFactory) staticTools() ([]Tool, error) {
	staticContent, err := os.ReadFile(f.config.StaticToolsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read static tools file: %w", err)
	}

	var config StaticConfig
	if err := yaml.Unmarshal(staticContent, &config); err != nil {
		return nil, fmt.Errorf("could not unmarshal StaticConfig content: %w", err)
	}

	tools := make([]Tool, len(config.Tools))
	for i, t := range config.Tools {
		tools[i] = Tool{
			Name:        t.Name,
			Description: t.Description,
			Fn: func(_ string) (string, error) {
				return t.Result, nil
			},
		}
	}

	return tools, nil
}
