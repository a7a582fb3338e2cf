package secrets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFunctionProvider_GetAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/functions/v1/get-marketplace-key" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer service-token" {
			t.Errorf("Unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"apiKey": "test-api-key"}`))
	}))
	defer server.Close()

	provider := NewFunctionProvider(server.URL, "service-token", "Test Agent", nil)

	key, err := provider.GetAPIKey(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != "test-api-key" {
		t.Errorf("Expected key 'test-api-key', got '%s'", key)
	}
}

func TestFunctionProvider_EmptyKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewFunctionProvider(server.URL, "service-token", "Test Agent", nil)

	_, err := provider.GetAPIKey(context.Background())
	if err == nil {
		t.Fatal("Expected error for empty key response")
	}

	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Errorf("Expected CredentialError, got: %T", err)
	}
}

func TestFunctionProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewFunctionProvider(server.URL, "service-token", "Test Agent", nil)

	_, err := provider.GetAPIKey(context.Background())
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}

	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Errorf("Expected CredentialError, got: %T", err)
	}
}

func TestStaticProvider(t *testing.T) {
	provider := NewStaticProvider("static-key")

	key, err := provider.GetAPIKey(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if key != "static-key" {
		t.Errorf("Expected key 'static-key', got '%s'", key)
	}
}

func TestStaticProvider_Empty(t *testing.T) {
	provider := NewStaticProvider("")

	_, err := provider.GetAPIKey(context.Background())
	if err == nil {
		t.Fatal("Expected error for empty static key")
	}
}
