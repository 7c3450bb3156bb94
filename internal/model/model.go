// Package model is the model-initialization shim: it turns environment or
// file configuration into an OpenAI-compatible chat client and the default
// request parameters, including the function definitions exported from the
// tool registry. The reasoning loop that uses the client lives in the
// external agent framework, not here.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/codeuhq/codeu/internal/toolkit"
)

// Config names everything needed to initialize a chat client against an
// OpenAI-compatible endpoint. APIKeyEnv holds the *name* of the environment
// variable carrying the key; the key itself never lives in config files.
type Config struct {
	BaseURL     string  `toml:"base_url"`
	APIKeyEnv   string  `toml:"api_key_env"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int64   `toml:"max_tokens"`
}

// FromEnv builds a Config from CODEU_MODEL, CODEU_BASE_URL and
// CODEU_API_KEY_ENV, with conservative defaults.
func FromEnv() Config {
	cfg := Config{
		APIKeyEnv:   "OPENAI_API_KEY",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   32768,
	}
	if v := os.Getenv("CODEU_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CODEU_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CODEU_API_KEY_ENV"); v != "" {
		cfg.APIKeyEnv = v
	}
	return cfg
}

// NewClient initializes the chat client. A missing API key is an error here
// rather than a 401 later, so startup failures are attributable.
func NewClient(cfg Config) (openai.Client, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return openai.Client{}, fmt.Errorf("api key env %s is empty", keyEnv)
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return openai.NewClient(opts...), nil
}

// ChatParams returns the default chat-completion parameters for cfg with
// the registry's tools attached as function definitions.
func ChatParams(cfg Config, reg *toolkit.Registry) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(cfg.Model),
		Temperature:         openai.Float(cfg.Temperature),
		MaxCompletionTokens: openai.Int(cfg.MaxTokens),
	}
	tools, err := ToolParams(reg)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params.Tools = tools
	return params, nil
}

// ToolParams converts the registry's tool schemas into OpenAI function
// definitions, preserving registry order.
func ToolParams(reg *toolkit.Registry) ([]openai.ChatCompletionToolUnionParam, error) {
	regTools := reg.Tools()
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(regTools))
	for _, t := range regTools {
		var params map[string]any
		if err := json.Unmarshal(t.Schema, &params); err != nil {
			return nil, fmt.Errorf("tool %s: schema: %w", t.Name, err)
		}
		out = append(out, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  shared.FunctionParameters(params),
		}))
	}
	return out, nil
}
