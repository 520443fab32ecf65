// Package classifier provides the automated content check used by the
// moderation engine.
package classifier

import (
	"log/slog"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
)

// New picks the OpenAI classifier when an API key is configured and the
// local heuristic otherwise.
func New(cfg *config.Config) moderation.Classifier {
	if cfg.OpenAIAPIKey == "" {
		slog.Info("content classifier selected", "provider", "heuristic")
		return NewHeuristic()
	}
	slog.Info("content classifier selected", "provider", "openai", "model", cfg.OpenAIModel)
	return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, cfg.OpenAIModel, &http.Client{Timeout: cfg.AITimeout})
}
