// Package analysis provides image understanding for the editor: a remote
// ImageService port for model-backed analysis and a local palette
// extractor.
//
// The remote side is an opaque collaborator: the editor hands it an encoded
// image and optional instruction and gets structured text back. Its
// failures, including authorization failures, surface as wrapped errors the
// caller can display but never needs to interpret.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the structured output of a remote image analysis.
type Result struct {
	// Description is a single SEO alt-text sentence.
	Description string `json:"description"`

	// SEOKeywords holds 5-10 keywords for the image.
	SEOKeywords []string `json:"seoKeywords"`

	// SuggestedPrompt is a detailed image-generation prompt that would
	// reproduce an image like this one.
	SuggestedPrompt string `json:"suggestedPrompt"`

	// CustomAnalysis answers the caller's instruction, empty if none was
	// given.
	CustomAnalysis string `json:"customAnalysis"`
}

// Service analyzes an encoded image, optionally steered by a free-form
// instruction.
type Service interface {
	Analyze(ctx context.Context, image []byte, mimeType, instruction string) (*Result, error)
}

// ExtractJSON pulls a JSON object out of model response text. Models often
// wrap the object in prose or code fences; the object is taken either from
// the start of the trimmed text or from the first '{' to the last '}'.
func ExtractJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		if !json.Valid([]byte(text)) {
			return nil, fmt.Errorf("analysis: response is not valid JSON")
		}
		return []byte(text), nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("analysis: no JSON object in response")
	}

	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		return nil, fmt.Errorf("analysis: extracted span is not valid JSON")
	}
	return candidate, nil
}

func parseResult(text string) (*Result, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("analysis: decode result: %w", err)
	}
	return &res, nil
}
