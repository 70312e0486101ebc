package analysis

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			"bare object",
			`{"description":"a cat"}`,
			`{"description":"a cat"}`,
			false,
		},
		{
			"leading whitespace",
			"\n\t  {\"a\":1}",
			`{"a":1}`,
			false,
		},
		{
			"wrapped in prose",
			"Here is the JSON you asked for:\n{\"a\":1}\nHope that helps!",
			`{"a":1}`,
			false,
		},
		{
			"code fence",
			"```json\n{\"a\":1}\n```",
			`{"a":1}`,
			false,
		},
		{
			"nested braces",
			"result: {\"outer\":{\"inner\":2}} done",
			`{"outer":{"inner":2}}`,
			false,
		},
		{"no object", "sorry, I cannot do that", "", true},
		{"only open brace", "here { it goes", "", true},
		{"braces out of order", "} backwards {", "", true},
		{"invalid json in span", "x {not json} y", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractJSON: err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err == nil && string(got) != tt.want {
				t.Errorf("ExtractJSON: got %s, want %s", got, tt.want)
			}
		})
	}
}

func fakeGeminiServer(t *testing.T, status int, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") == "" {
			t.Error("request is missing the API key header")
		}
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Error("request should carry one content with a text part and an image part")
		}

		w.WriteHeader(status)
		if status == http.StatusOK {
			resp := generateResponse{}
			resp.Candidates = append(resp.Candidates, struct {
				Content content `json:"content"`
			}{Content: content{Parts: []part{{Text: replyText}}}})
			json.NewEncoder(w).Encode(resp)
		} else {
			w.Write([]byte(`{"error":{"message":"permission denied"}}`))
		}
	}))
}

func TestGeminiClient_Analyze(t *testing.T) {
	reply := "Here you go:\n" + `{
		"description": "A red square on white.",
		"seoKeywords": ["red", "square", "minimal"],
		"suggestedPrompt": "a perfect red square centered on a white background",
		"customAnalysis": "Works well as a product placeholder."
	}`
	srv := fakeGeminiServer(t, http.StatusOK, reply)
	defer srv.Close()

	client, err := NewGemini("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}

	res, err := client.Analyze(context.Background(), []byte("fake-image-bytes"), "image/png", "describe for e-commerce")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if res.Description != "A red square on white." {
		t.Errorf("description: got %q", res.Description)
	}
	if len(res.SEOKeywords) != 3 {
		t.Errorf("keywords: got %v", res.SEOKeywords)
	}
	if res.SuggestedPrompt == "" || res.CustomAnalysis == "" {
		t.Error("prompt and custom analysis should be populated")
	}
}

func TestGeminiClient_UpstreamError(t *testing.T) {
	srv := fakeGeminiServer(t, http.StatusForbidden, "")
	defer srv.Close()

	client, err := NewGemini("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Analyze(context.Background(), []byte("img"), "image/png", "")
	if err == nil {
		t.Fatal("Analyze should surface upstream failures")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the upstream status, got: %v", err)
	}
}

func TestGeminiClient_NoJSONInReply(t *testing.T) {
	srv := fakeGeminiServer(t, http.StatusOK, "I would rather write a poem about this image.")
	defer srv.Close()

	client, err := NewGemini("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Analyze(context.Background(), []byte("img"), "image/png", ""); err == nil {
		t.Error("Analyze should fail when the reply holds no JSON object")
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(""); err == nil {
		t.Error("NewGemini should reject an empty API key")
	}
}

func TestPalette(t *testing.T) {
	// Left half pure red, right half pure blue.
	img := image.NewRGBA(image.Rect(0, 0, 100, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				img.Set(x, y, color.RGBA{240, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 240, 255})
			}
		}
	}

	entries := Palette(img, 5)
	if len(entries) != 2 {
		t.Fatalf("palette size: got %d, want 2 (%+v)", len(entries), entries)
	}

	for _, e := range entries {
		if e.Share < 49 || e.Share > 51 {
			t.Errorf("share of %s: got %.1f, want ~50", e.Hex, e.Share)
		}
	}
}

func TestPalette_MergesNearbyShades(t *testing.T) {
	// Two barely distinguishable dark reds that land in different
	// quantization bins must fold into one entry.
	img := image.NewRGBA(image.Rect(0, 0, 80, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 80; x++ {
			if x%2 == 0 {
				img.Set(x, y, color.RGBA{140, 10, 10, 255})
			} else {
				img.Set(x, y, color.RGBA{150, 20, 20, 255})
			}
		}
	}

	entries := Palette(img, 5)
	if len(entries) != 1 {
		t.Errorf("nearby shades should merge into one entry, got %d (%+v)", len(entries), entries)
	}
	if len(entries) > 0 && entries[0].Share < 99 {
		t.Errorf("merged share: got %.1f, want ~100", entries[0].Share)
	}
}

func TestPalette_CountLimit(t *testing.T) {
	// Four well-separated colors, ask for two.
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	colors := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, colors[x/10])
		}
	}

	entries := Palette(img, 2)
	if len(entries) != 2 {
		t.Errorf("count limit: got %d entries, want 2", len(entries))
	}
}

func TestPalette_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if entries := Palette(img, 5); entries != nil {
		t.Errorf("empty image: got %+v, want nil", entries)
	}
}
