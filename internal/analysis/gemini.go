package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const basePrompt = `You are an expert in SEO copywriting and image prompt engineering.

Return JSON with:
  - "description": SEO alt text sentence.
  - "seoKeywords": 5-10 keywords.
  - "suggestedPrompt": long detailed image generation prompt.
  - "customAnalysis": paragraph answering user instruction (empty if none).

JSON only. No explanations.`

// GeminiClient implements Service against the Generative Language REST API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// GeminiOption customizes the client.
type GeminiOption func(*GeminiClient)

// WithModel overrides the generation model.
func WithModel(model string) GeminiOption {
	return func(c *GeminiClient) { c.model = model }
}

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.http = hc }
}

// NewGemini creates a client. The API key is required; everything else has
// a default.
func NewGemini(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("analysis: missing API key")
	}
	c := &GeminiClient{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Request/response shapes for generateContent. Only the fields this client
// touches are declared.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the image plus prompt to the model and parses the JSON
// object out of its reply.
func (c *GeminiClient) Analyze(ctx context.Context, image []byte, mimeType, instruction string) (*Result, error) {
	prompt := basePrompt
	if instruction != "" {
		prompt += fmt.Sprintf("\nUser instruction: %q.", instruction)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MIMEType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("analysis: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("analysis: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis: call model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("analysis: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Auth and quota failures included: opaque upstream errors.
		return nil, fmt.Errorf("analysis: model returned %s: %s", resp.Status, truncate(body, 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("analysis: decode response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return nil, fmt.Errorf("analysis: model returned no candidates")
	}

	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return parseResult(text.String())
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
