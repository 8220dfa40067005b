// Package gemini wraps the genai SDK with the pipeline's call policy:
// bounded retries with a fixed delay, API-key rotation on quota errors, and a
// shared client-side rate limit across all phases.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/podcast-flow/internal/logger"
)

type Client struct {
	apiKeys    []string
	currentKey int
	attempts   int
	delay      time.Duration
	limiter    *rate.Limiter
	logger     logger.Logger
}

// New creates a Client that rotates through the supplied Gemini API keys.
// attempts and delay bound every call; requestsPerMinute caps the overall
// request rate.
func New(apiKeys []string, attempts int, delay time.Duration, requestsPerMinute int, log logger.Logger) *Client {
	return &Client{
		apiKeys:  apiKeys,
		attempts: attempts,
		delay:    delay,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerMinute)/60.0, 1),
		logger:   log,
	}
}

// GenerateText sends a prompt and returns the concatenated text parts of the
// first candidate.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	var text string
	err := c.withRetry(ctx, func(client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return err
		}

		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return fmt.Errorf("empty response from Gemini")
		}

		text = ""
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text == "" {
			return fmt.Errorf("no text parts in Gemini response")
		}
		return nil
	})
	return text, err
}

// GenerateSpeech synthesizes text with the given prebuilt voice and returns
// raw PCM audio (24kHz, 16-bit, mono).
func (c *Client) GenerateSpeech(ctx context.Context, model, text, voice string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: voice,
				},
			},
		},
	}

	var pcm []byte
	err := c.withRetry(ctx, func(client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, model, genai.Text(text), cfg)
		if err != nil {
			return err
		}

		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return fmt.Errorf("empty response from Gemini")
		}

		for _, part := range result.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				pcm = part.InlineData.Data
				return nil
			}
		}
		return fmt.Errorf("no audio data in Gemini response")
	})
	return pcm, err
}

// withRetry runs call up to c.attempts times, waiting c.delay between
// attempts. Quota errors rotate to the next API key before retrying.
func (c *Client) withRetry(ctx context.Context, call func(*genai.Client) error) error {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.apiKeys[c.currentKey],
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
		} else if err := call(client); err != nil {
			lastErr = err
			if isQuotaError(err) {
				c.logger.Warn(ctx, "Key %d rate limited, rotating...", c.currentKey+1)
				c.rotateKey()
			}
		} else {
			return nil
		}

		if attempt < c.attempts {
			c.logger.Debug(ctx, "Attempt %d of %d failed: %v", attempt, c.attempts, lastErr)
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("gemini call failed after %d attempts: %w", c.attempts, lastErr)
}

func (c *Client) rotateKey() {
	c.currentKey = (c.currentKey + 1) % len(c.apiKeys)
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
