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

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// GeminiProvider calls Google's generativelanguage REST API. The image, if
// any, rides along as an inline part of the same request: a single attempt,
// no separate upload retry.
type GeminiProvider struct {
	APIKey string
	Client *http.Client
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Analyze(ctx context.Context, image []byte, description string, category models.Category) (Verdict, error) {
	if p.APIKey == "" {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: api key not configured")
	}

	parts := []geminiPart{}
	if len(image) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: http.DetectContentType(image),
			Data:     base64.StdEncoding.EncodeToString(image),
		}})
	}
	parts = append(parts, geminiPart{Text: buildPrompt(description, category)})

	payload, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", geminiEndpoint, p.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("gemini: empty response")
	}

	return parseVerdict(parsed.Candidates[0].Content.Parts[0].Text)
}
