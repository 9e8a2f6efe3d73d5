package analyzer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Model             string `yaml:"model"`
	AnalyzeChatPrompt string `yaml:"analyze_chat_prompt"`
}

type settingsRoot struct {
	Gemini Settings `yaml:"gemini"`
}

func LoadSettings(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read prompts: %w", err)
	}
	var root settingsRoot
	if err := yaml.Unmarshal(b, &root); err != nil {
		return Settings{}, fmt.Errorf("unmarshal prompts: %w", err)
	}
	if root.Gemini.AnalyzeChatPrompt == "" {
		return Settings{}, fmt.Errorf("analyze_chat_prompt missing")
	}
	if root.Gemini.Model == "" {
		root.Gemini.Model = "gemini-1.5-flash"
	}
	return root.Gemini, nil
}
