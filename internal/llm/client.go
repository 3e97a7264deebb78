package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"goaltrack/internal/config"
)

// Tier selects the completion model. Basic reports use the small tier; deep
// (retrieval-augmented) analysis uses the large tier.
type Tier string

const (
	TierLarge Tier = "large"
	TierSmall Tier = "small"
)

// Options are per-call generation parameters.
type Options struct {
	Temperature float64
	MaxTokens   int
	System      string
}

// GenerationError means the completion call failed on the small tier too,
// i.e. the single downgrade-and-retry has been exhausted.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("AI analysis generation failed, please try again later: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	apiURL string
	apiKey string
	models map[Tier]string
	client *http.Client
}

func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		apiURL: cfg.ChatURL,
		apiKey: cfg.APIKey,
		models: map[Tier]string{
			TierLarge: cfg.LargeModel,
			TierSmall: cfg.SmallModel,
		},
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete generates text for the prompt at the requested tier. A failure at
// the large tier is retried exactly once at the small tier; a failure at the
// small tier (or of the retry) surfaces as *GenerationError. No backoff, no
// further attempts.
func (c *Client) Complete(ctx context.Context, prompt string, tier Tier, opts Options) (string, error) {
	text, err := c.callOnce(ctx, c.models[tier], prompt, opts)
	if err == nil {
		return text, nil
	}
	if tier == TierLarge {
		log.Printf("[LLM] Large-tier call failed, falling back to small tier: %v", err)
		text, err = c.callOnce(ctx, c.models[TierSmall], prompt, opts)
		if err == nil {
			return text, nil
		}
	}
	return "", &GenerationError{Err: err}
}

func (c *Client) callOnce(ctx context.Context, model, prompt string, opts Options) (string, error) {
	system := opts.System
	if system == "" {
		system = "You are a goal-oriented AI assistant."
	}
	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("completion API returned status %d: %s", res.StatusCode, string(b))
	}

	var respStruct struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&respStruct); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respStruct.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return respStruct.Choices[0].Message.Content, nil
}
