package scan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScanDocument(t *testing.T) {
	var received chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q, want bearer key", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"name\":\"Business License\",\"category\":\"license\",\"due_date\":\"2026-09-30\"}"}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	result, err := client.ScanDocument([]byte("fake-image-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("scan document: %v", err)
	}

	if result.Name != "Business License" {
		t.Errorf("name = %q, want %q", result.Name, "Business License")
	}
	if result.Category != "license" {
		t.Errorf("category = %q, want %q", result.Category, "license")
	}
	if result.DueDate != "2026-09-30" {
		t.Errorf("due_date = %q, want %q", result.DueDate, "2026-09-30")
	}

	if len(received.Messages) != 1 || len(received.Messages[0].Content) != 2 {
		t.Fatalf("unexpected message shape: %+v", received.Messages)
	}
	img := received.Messages[0].Content[1]
	if img.ImageURL == nil || !strings.HasPrefix(img.ImageURL.URL, "data:image/jpeg;base64,") {
		t.Errorf("image url missing data prefix: %+v", img.ImageURL)
	}
}

func TestScanDocumentInvalidDueDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"name\":\"Lease\",\"category\":\"lease\",\"due_date\":\"next spring\"}"}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	result, err := client.ScanDocument([]byte("img"), "image/png")
	if err != nil {
		t.Fatalf("scan document: %v", err)
	}
	if result.DueDate != "" {
		t.Errorf("due_date = %q, want empty for unparseable date", result.DueDate)
	}
}

func TestScanDocumentUnsupportedType(t *testing.T) {
	client := NewClient("test-key")
	if _, err := client.ScanDocument([]byte("%PDF"), "application/pdf"); err == nil {
		t.Fatal("expected error for non-image content type")
	}
}

func TestScanDocumentNotConfigured(t *testing.T) {
	client := NewClient("")
	if _, err := client.ScanDocument([]byte("img"), "image/jpeg"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

// rewriteTransport redirects all requests to a test server URL.
type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target[len("http://"):]
	return t.base.RoundTrip(req)
}
