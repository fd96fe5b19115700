package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"jansevak/backend/internal/models"
)

const (
	grokEndpoint = "https://api.x.ai/v1/chat/completions"
	grokModel    = "grok-2-vision-latest"
)

// GrokProvider calls xAI's OpenAI-compatible chat completions API. Images
// are attached as data-URI content parts.
type GrokProvider struct {
	APIKey string
	Client *http.Client
}

type grokContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *grokImageURL `json:"image_url,omitempty"`
}

type grokImageURL struct {
	URL string `json:"url"`
}

type grokMessage struct {
	Role    string            `json:"role"`
	Content []grokContentPart `json:"content"`
}

type grokRequest struct {
	Model       string        `json:"model"`
	Messages    []grokMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type grokResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *GrokProvider) Analyze(ctx context.Context, image []byte, description string, category models.Category) (Verdict, error) {
	if p.APIKey == "" {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: api key not configured")
	}

	content := []grokContentPart{}
	if len(image) > 0 {
		dataURI := fmt.Sprintf("data:%s;base64,%s",
			http.DetectContentType(image),
			base64.StdEncoding.EncodeToString(image))
		content = append(content, grokContentPart{Type: "image_url", ImageURL: &grokImageURL{URL: dataURI}})
	}
	content = append(content, grokContentPart{Type: "text", Text: buildPrompt(description, category)})

	payload, err := json.Marshal(grokRequest{
		Model:    grokModel,
		Messages: []grokMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, grokEndpoint, bytes.NewReader(payload))
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: unexpected status %d", resp.StatusCode)
	}

	var parsed grokResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("grok: empty response")
	}

	return parseVerdict(parsed.Choices[0].Message.Content)
}
