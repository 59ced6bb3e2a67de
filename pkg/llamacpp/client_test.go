package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 48))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Expected /v1/chat/completions, got %s", r.URL.Path)
		}
		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		parts, _ := req.Messages[0].Content.([]interface{})
		if len(parts) != 2 {
			t.Errorf("Expected text and image parts, got %d", len(parts))
		} else {
			img := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})["url"].(string)
			if !strings.HasPrefix(img, "data:image/png;base64,") {
				t.Errorf("Unexpected image url prefix: %.40s", img)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		body := `{"id":"1","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"{\"people\":[],\"objects\":[{\"object\":\"lámpara\"},{\"object\":\"libro\"}]}"}}]}`
		w.Write([]byte(body))
	}))
	defer server.Close()

	c, _ := NewClient(server.URL+"/", "m", "es")
	result, err := c.Analyze(context.Background(), testPNG(t))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.People) != 0 {
		t.Errorf("Expected no people, got %d", len(result.People))
	}
	if got := result.JoinedLabels(); got != "lámpara, libro" {
		t.Errorf("Unexpected labels %q", got)
	}
}

func TestAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, _ := NewClient(server.URL, "m", "es")
	_, err := c.Analyze(context.Background(), testPNG(t))
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("Error should mention the status, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("", "m", "es")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("Unexpected default base URL %s", c.baseURL)
	}
}
