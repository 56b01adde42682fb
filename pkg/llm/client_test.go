package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func testClient(srvURL string) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: srvURL, Model: "test-model"})
}

func TestExtractDocumentFencedReply(t *testing.T) {
	reply := "```json\n" + `{
  "medications": [{"drug_name": "Carprofen 75mg", "strength": "75mg", "confidence": 0.92}],
  "vaccines": [],
  "allergies": [],
  "problems": [{"condition_name": "Osteoarthritis", "is_active": true, "confidence": 0.8}],
  "vitals": [{"weight_kg": 31.7, "confidence": 0.9}]
}` + "\n```"
	srv := httptest.NewServer(chatReply(t, reply))
	defer srv.Close()

	payload, err := testClient(srv.URL).ExtractDocument(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(payload.Medications) != 1 || payload.Medications[0].DrugName != "Carprofen 75mg" {
		t.Fatalf("unexpected medications: %+v", payload.Medications)
	}
	if len(payload.Problems) != 1 || payload.Problems[0].ConditionName != "Osteoarthritis" {
		t.Fatalf("unexpected problems: %+v", payload.Problems)
	}
	if len(payload.Vitals) != 1 || payload.Vitals[0].WeightKg == nil || *payload.Vitals[0].WeightKg != 31.7 {
		t.Fatalf("unexpected vitals: %+v", payload.Vitals)
	}
	if payload.Empty() {
		t.Fatal("payload should not be empty")
	}
}

func TestExtractDocumentSchemaRejection(t *testing.T) {
	// drug_name missing: reply must be rejected before unmarshal.
	reply := `{"medications": [{"strength": "75mg"}]}`
	srv := httptest.NewServer(chatReply(t, reply))
	defer srv.Close()

	_, err := testClient(srv.URL).ExtractDocument(context.Background(), []byte("x"), "image/png")
	if err == nil || !strings.Contains(err.Error(), "malformed extractor reply") {
		t.Fatalf("expected schema rejection, got %v", err)
	}
}

func TestExtractDocumentNonJSONReply(t *testing.T) {
	srv := httptest.NewServer(chatReply(t, "Sorry, I cannot read this document."))
	defer srv.Close()

	_, err := testClient(srv.URL).ExtractDocument(context.Background(), []byte("x"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error for prose reply")
	}
}

func TestExtractDocumentHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ExtractDocument(context.Background(), []byte("x"), "application/pdf")
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestConfigured(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if NewClient(Config{}).Configured() {
		t.Fatal("client without key must not report configured")
	}
	if !NewClient(Config{APIKey: "k"}).Configured() {
		t.Fatal("client with key must report configured")
	}
}

func TestStripMarkdownFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		if got := stripMarkdownFences(c.in); got != c.want {
			t.Errorf("stripMarkdownFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
