package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .filerag.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to filerag! Let's configure your bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}

	switch ProviderType(providerStr) {
	case ProviderOllama:
		cfg.EmbeddingProviders = []EmbeddingProviderConfig{{
			ID:         "ollama-local",
			Type:       ProviderOllama,
			Model:      "nomic-embed-text",
			Dimensions: 768,
		}}
	default:
		cfg.EmbeddingProviders = []EmbeddingProviderConfig{{
			ID:        "openai-small",
			Type:      ProviderOpenAI,
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
		}}
	}

	// 2. Injection mode.
	injectionPrompt := promptui.Select{
		Label: "How should file content reach the model",
		Items: []string{
			"system - inject as a system message, prune old rounds",
			"prompt - append to the user prompt",
		},
	}
	idx, _, err := injectionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("injection selection: %w", err)
	}
	if idx == 1 {
		cfg.InjectionType = InjectionPrompt
	}

	// 3. Retention window.
	retentionPrompt := promptui.Prompt{
		Label:   "File retention time in minutes",
		Default: strconv.Itoa(cfg.FileRetentionTime),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return fmt.Errorf("must be a non-negative integer")
			}
			return nil
		},
	}
	retentionStr, err := retentionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("retention prompt: %w", err)
	}
	cfg.FileRetentionTime, _ = strconv.Atoi(retentionStr)

	// 4. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir prompt: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(".filerag.yml"); err != nil {
		return nil, err
	}
	fmt.Println("\nSaved configuration to .filerag.yml")

	return cfg, nil
}
