package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"relationship-coach/internal/coach"
	"relationship-coach/internal/db"
	"relationship-coach/internal/service"
)

func setupTestRouter(t *testing.T) (*Router, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_api_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	database, err := db.NewDB(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if err := database.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	svc := service.NewService(database, coach.NewSelector(nil))
	router := NewRouter(svc, "", nil)

	cleanup := func() {
		database.Close()
		os.Remove(tmpFile.Name())
	}

	return router, cleanup
}

func startConversation(t *testing.T, router *Router) string {
	t.Helper()

	body := `{
		"userName": "Maya",
		"userEmail": "maya@example.com",
		"relationshipType": "romantic",
		"initialMessage": "I need some help",
		"urgencyLevel": "medium"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/start", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var response StartConversationResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response.ConversationID
}

func TestStartConversation_Success(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	body := `{
		"userName": "Maya",
		"userEmail": "maya@example.com",
		"phone": "555-0101",
		"relationshipType": "family",
		"initialMessage": "My sister and I argue constantly",
		"urgencyLevel": "high"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/start", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var response StartConversationResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true")
	}
	if response.ConversationID == "" {
		t.Error("expected non-empty conversationId")
	}
}

func TestStartConversation_MissingFields(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	body := `{"userName": "Maya"}`
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/start", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Success {
		t.Error("expected success=false")
	}
}

func TestStartConversation_InvalidBody(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/start", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSendMessage_Success(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	id := startConversation(t, router)

	body := `{"content": "we keep fighting"}`
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/"+id+"/messages", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var response SendMessageResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Messages) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(response.Messages))
	}
	if response.Messages[0].Sender != "user" || response.Messages[0].Content != "we keep fighting" {
		t.Errorf("expected the user message first, got %+v", response.Messages[0])
	}
	if response.Messages[1].Sender != "coach" {
		t.Errorf("expected the coach reply second, got %+v", response.Messages[1])
	}
}

func TestSendMessage_NotFound(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	body := `{"content": "hello?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/no-such-id/messages", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestSendMessage_MissingContent(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	id := startConversation(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/"+id+"/messages", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGetConversation_Success(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	id := startConversation(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/"+id, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response ConversationResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Conversation == nil {
		t.Fatal("expected conversation in response")
	}
	if response.Conversation.ID != id {
		t.Errorf("expected conversation ID %s, got %s", id, response.Conversation.ID)
	}
	if len(response.Conversation.Messages) != 2 {
		t.Errorf("expected 2 messages in transcript, got %d", len(response.Conversation.Messages))
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/no-such-id", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, cleanup := setupTestRouter(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodOptions, "/api/conversations/start", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d for preflight, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected wildcard origin with empty allowlist, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRouter_CORSAllowlist(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test_cors_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	database, err := db.NewDB(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	svc := service.NewService(database, coach.NewSelector(nil))
	router := NewRouter(svc, "", []string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Errorf("expected allowlisted origin to be echoed, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("expected no origin header for unlisted origin, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
