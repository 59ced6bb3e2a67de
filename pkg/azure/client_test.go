package azure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnalyzeRequest(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/vision/v3.1/analyze" {
			t.Errorf("Expected /vision/v3.1/analyze, got %s", r.URL.Path)
		}
		if r.URL.RawQuery != "visualFeatures=Objects,People&language=es" {
			t.Errorf("Unexpected query %q", r.URL.RawQuery)
		}
		if got := r.URL.Query().Get("visualFeatures"); got != "Objects,People" {
			t.Errorf("Expected visualFeatures Objects,People, got %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "es" {
			t.Errorf("Expected language es, got %q", got)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("Expected subscription key test-key, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/octet-stream" {
			t.Errorf("Expected octet-stream content type, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !bytes.Equal(body, payload) {
			t.Errorf("Body does not match the image payload")
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"people": [{"rectangle": {"x": 10, "y": 20, "w": 30, "h": 40}, "confidence": 0.93}],
			"objects": [
				{"rectangle": {"x": 1, "y": 2, "w": 3, "h": 4}, "object": "silla", "confidence": 0.6},
				{"rectangle": {"x": 5, "y": 6, "w": 7, "h": 8}, "object": "mesa", "confidence": 0.7}
			],
			"requestId": "abc",
			"metadata": {"width": 640, "height": 480, "format": "Jpeg"},
			"modelVersion": "2021-05-01"
		}`)
	}))
	defer server.Close()

	// trailing slash must not produce a double slash
	client, err := NewClient(server.URL+"/", "test-key")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	result, err := client.Analyze(context.Background(), payload)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.People) != 1 {
		t.Fatalf("Expected 1 person, got %d", len(result.People))
	}
	r := result.People[0].Rectangle
	if r.X != 10 || r.Y != 20 || r.W != 30 || r.H != 40 {
		t.Errorf("Unexpected rectangle %v", r)
	}
	if got := result.JoinedLabels(); got != "silla, mesa" {
		t.Errorf("Expected labels 'silla, mesa', got %q", got)
	}
	if result.Metadata == nil || result.Metadata.Width != 640 {
		t.Errorf("Expected metadata width 640, got %+v", result.Metadata)
	}
	if result.RequestID != "abc" {
		t.Errorf("Expected request id abc, got %q", result.RequestID)
	}
}

func TestAnalyzeEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"requestId": "x"}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "k")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	result, err := client.Analyze(context.Background(), []byte{1})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.People) != 0 || len(result.Objects) != 0 {
		t.Errorf("Expected no detections, got %+v", result)
	}
}

func TestAnalyzeStatusError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "azure envelope",
			status:      http.StatusUnauthorized,
			body:        `{"error": {"code": "401", "message": "Access denied due to invalid subscription key."}}`,
			wantCode:    "401",
			wantMessage: "Access denied due to invalid subscription key.",
		},
		{
			name:        "plain body",
			status:      http.StatusInternalServerError,
			body:        "boom\n",
			wantMessage: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "bad-key")
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}
			result, err := client.Analyze(context.Background(), []byte{1, 2, 3})
			if err == nil {
				t.Fatal("Expected an error for a non-success status")
			}
			if result != nil {
				t.Error("Expected no result on failure")
			}

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("Expected *StatusError, got %T", err)
			}
			if se.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, se.StatusCode)
			}
			if se.Code != tt.wantCode {
				t.Errorf("Expected code %q, got %q", tt.wantCode, se.Code)
			}
			if se.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, se.Message)
			}
		})
	}
}

func TestAnalyzeMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"people": [`)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "k")
	if _, err := client.Analyze(context.Background(), []byte{1}); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestAnalyzeRejectsEmptyPayload(t *testing.T) {
	client, _ := NewClient("http://localhost", "k")
	if _, err := client.Analyze(context.Background(), nil); err == nil {
		t.Error("Expected an error for an empty payload")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "k"); err == nil {
		t.Error("Expected error for empty endpoint")
	}
	if _, err := NewClient("http://x", ""); err == nil {
		t.Error("Expected error for empty key")
	}
	if _, err := NewClient("ftp://x", "k"); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}

func TestAnalyzeURLOptions(t *testing.T) {
	client, err := NewClient("https://example.cognitiveservices.azure.com", "k",
		WithLanguage("en"), WithFeatures("People"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	want := "https://example.cognitiveservices.azure.com/vision/v3.1/analyze?visualFeatures=People&language=en"
	if got := client.AnalyzeURL(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
