package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func completionBody(content string, tokens int) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"completion_tokens": tokens},
	}
}

func TestClient_Complete(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Expected valid request body, got: %v", err)
		}
		json.NewEncoder(w).Encode(completionBody("SELECT 1", 7))
	}))
	defer server.Close()

	client := NewClient("test-key", "qwen-2.5-coder-32b")
	client.Endpoint = server.URL

	reply, usage, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "you write SQL"},
		{Role: "user", Content: "one"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if reply != "SELECT 1" {
		t.Errorf("Expected reply 'SELECT 1', got %q", reply)
	}
	if usage.CompletionTokens != 7 {
		t.Errorf("Expected 7 completion tokens, got %d", usage.CompletionTokens)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotReq.Model != "qwen-2.5-coder-32b" || len(gotReq.Messages) != 2 {
		t.Errorf("Unexpected request payload: %+v", gotReq)
	}
}

func TestClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "invalid api key", "type": "auth"},
		})
	}))
	defer server.Close()

	client := NewClient("bad-key", "m")
	client.Endpoint = server.URL

	_, _, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	if err == nil {
		t.Fatal("Expected error for API failure")
	}
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{},
			"usage":   map[string]int{"completion_tokens": 0},
		})
	}))
	defer server.Close()

	client := NewClient("k", "m")
	client.Endpoint = server.URL

	_, _, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	if err == nil {
		t.Fatal("Expected error for empty choices")
	}
}

func TestClient_CompleteWithRetry_EventualSuccess(t *testing.T) {
	restore := shrinkBackoff()
	defer restore()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": "rate limited"},
				"usage": map[string]int{"completion_tokens": 1},
			})
			return
		}
		json.NewEncoder(w).Encode(completionBody("SELECT 2", 5))
	}))
	defer server.Close()

	client := NewClient("k", "m")
	client.Endpoint = server.URL

	reply, usage, err := client.CompleteWithRetry(context.Background(), []Message{{Role: "user", Content: "x"}})
	if err != nil {
		t.Fatalf("Expected eventual success, got: %v", err)
	}
	if reply != "SELECT 2" {
		t.Errorf("Expected reply 'SELECT 2', got %q", reply)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	// Failed attempts still count their tokens.
	if usage.CompletionTokens != 7 {
		t.Errorf("Expected 7 accumulated tokens, got %d", usage.CompletionTokens)
	}
}

func TestClient_CompleteWithRetry_Exhaustion(t *testing.T) {
	restore := shrinkBackoff()
	defer restore()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "upstream down"},
		})
	}))
	defer server.Close()

	client := NewClient("k", "m")
	client.Endpoint = server.URL

	_, _, err := client.CompleteWithRetry(context.Background(), []Message{{Role: "user", Content: "x"}})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Expected ErrRetriesExhausted, got: %v", err)
	}
	if attempts != MaxAttempts {
		t.Errorf("Expected %d attempts, got %d", MaxAttempts, attempts)
	}
}

func shrinkBackoff() func() {
	prevBase, prevMax := RetryBaseWait, RetryMaxWait
	RetryBaseWait = time.Millisecond
	RetryMaxWait = 2 * time.Millisecond
	return func() {
		RetryBaseWait, RetryMaxWait = prevBase, prevMax
	}
}
