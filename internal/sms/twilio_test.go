package sms

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5035551234", "+15035551234", false},
		{"(503) 555-1234", "+15035551234", false},
		{"15035551234", "+15035551234", false},
		{"+15035551234", "+15035551234", false},
		{"+44 20 7946 0958", "+442079460958", false},
		{"12345", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeNumber(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeNumber(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeNumber(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSendVerificationCode(t *testing.T) {
	var gotUser, gotPass, gotTo, gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid": "SM123"}`))
	}))
	defer server.Close()

	client := NewClient("AC123", "secret", "+15035550000")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.SendVerificationCode("5035551234", "731942"); err != nil {
		t.Fatalf("send verification code: %v", err)
	}

	if gotUser != "AC123" || gotPass != "secret" {
		t.Errorf("basic auth = %q/%q, want AC123/secret", gotUser, gotPass)
	}
	if gotTo != "+15035551234" {
		t.Errorf("To = %q, want %q", gotTo, "+15035551234")
	}
	if !strings.Contains(gotBody, "731942") {
		t.Errorf("body missing code: %q", gotBody)
	}
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("", "", "")
	if client.Configured() {
		t.Error("expected Configured() = false")
	}
	if err := client.SendVerificationCode("5035551234", "731942"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient("AC123", "secret", "+15035550000")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.SendVerificationCode("5035551234", "731942"); err == nil {
		t.Fatal("expected error for API failure")
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
