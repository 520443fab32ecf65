package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
)

const systemPrompt = `You are a content safety classifier for a social network. ` +
	`Given a post and optional media references, respond with JSON only (no markdown, no code fences): ` +
	`{"confidence": number between 0 and 1 that the content must be removed, ` +
	`"flags": array of zero or more of ["child_nudity","pedophilia","child_violence","violence_against_women","rape","extreme_violence","hate_speech","terrorism"]}.`

var errEmptyCompletion = errors.New("openai returned no choices")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type verdict struct {
	Confidence *float64          `json:"confidence"`
	Flags      []models.AIReason `json:"flags"`
}

// OpenAI classifies content with a chat-completions model.
type OpenAI struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

func NewOpenAI(apiKey, apiURL, model string, client *http.Client) *OpenAI {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAI{apiKey: apiKey, apiURL: apiURL, model: model, client: client}
}

func (o *OpenAI) CheckContent(ctx context.Context, text string, mediaRefs []string) (moderation.CheckResult, error) {
	prompt := text
	if len(mediaRefs) > 0 {
		prompt += "\n\nMedia: " + strings.Join(mediaRefs, ", ")
	}
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return moderation.CheckResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewReader(body))
	if err != nil {
		return moderation.CheckResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return moderation.CheckResult{}, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return moderation.CheckResult{}, fmt.Errorf("openai returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return moderation.CheckResult{}, fmt.Errorf("failed to decode openai response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return moderation.CheckResult{}, errEmptyCompletion
	}
	return parseVerdict(chat.Choices[0].Message.Content)
}

func parseVerdict(content string) (moderation.CheckResult, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return moderation.CheckResult{}, fmt.Errorf("failed to parse verdict: %w", err)
	}
	if v.Confidence == nil {
		return moderation.CheckResult{}, errors.New("verdict has no confidence")
	}
	if *v.Confidence < 0 || *v.Confidence > 1 {
		return moderation.CheckResult{}, fmt.Errorf("verdict confidence %v out of range", *v.Confidence)
	}

	result := moderation.CheckResult{Confidence: *v.Confidence}
	for _, flag := range v.Flags {
		if flag.Valid() {
			result.Flags = append(result.Flags, flag)
		}
	}
	return result, nil
}
