package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"relationship-coach/internal/db"
	"relationship-coach/internal/models"
	"relationship-coach/internal/service"
)

// ConversationHandler handles conversation-related HTTP requests
type ConversationHandler struct {
	svc *service.Service
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(svc *service.Service) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// StartConversationRequest represents the request body for starting a conversation
type StartConversationRequest struct {
	UserName         string `json:"userName"`
	UserEmail        string `json:"userEmail"`
	Phone            string `json:"phone,omitempty"`
	RelationshipType string `json:"relationshipType"`
	InitialMessage   string `json:"initialMessage"`
	UrgencyLevel     string `json:"urgencyLevel,omitempty"`
}

// StartConversationResponse represents the response for starting a conversation
type StartConversationResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message"`
}

// ErrorResponse is the generic failure envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// Start handles POST /api/conversations/start
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	log.Printf("[API] Start conversation started")

	var req StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[API] Start conversation failed: invalid request body err=%v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	log.Printf("[API] Start conversation request email=%s type=%s urgency=%s",
		req.UserEmail, req.RelationshipType, req.UrgencyLevel)

	conversationID, err := h.svc.StartConversation(service.StartInput{
		UserName:         req.UserName,
		UserEmail:        req.UserEmail,
		Phone:            req.Phone,
		RelationshipType: models.RelationshipType(req.RelationshipType),
		InitialMessage:   req.InitialMessage,
		UrgencyLevel:     models.UrgencyLevel(req.UrgencyLevel),
	})
	if err != nil {
		var validationErr *db.ValidationError
		if errors.As(err, &validationErr) {
			log.Printf("[API] Start conversation failed: validation err=%v", err)
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		log.Printf("[API] Start conversation failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Failed to start conversation")
		return
	}

	log.Printf("[API] Start conversation completed conversation_id=%s", conversationID)

	writeJSON(w, http.StatusCreated, StartConversationResponse{
		Success:        true,
		ConversationID: conversationID,
		Message:        "Conversation started successfully",
	})
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse represents the response for sending a message.
// Messages holds exactly the user message and coach reply just appended.
type SendMessageResponse struct {
	Success  bool              `json:"success"`
	Messages []MessageResponse `json:"messages"`
}

func toMessageResponse(msg models.Message) MessageResponse {
	return MessageResponse{
		Sender:    string(msg.Sender),
		Content:   msg.Content,
		Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
	}
}

// SendMessage handles POST /api/conversations/{id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.PathValue("id")
	log.Printf("[API] SendMessage started conversation_id=%s", id)

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[API] SendMessage failed: invalid request body err=%v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Content == "" {
		log.Printf("[API] SendMessage failed: content is required")
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	// Truncate content for logging
	contentPreview := req.Content
	if len(contentPreview) > 100 {
		contentPreview = contentPreview[:100] + "..."
	}
	log.Printf("[API] SendMessage request conversation_id=%s content=%q", id, contentPreview)

	pair, err := h.svc.PostMessage(id, req.Content)
	if errors.Is(err, db.ErrNotFound) {
		log.Printf("[API] SendMessage failed: conversation not found conversation_id=%s", id)
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		log.Printf("[API] SendMessage failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	messages := make([]MessageResponse, len(pair))
	for i, msg := range pair {
		messages[i] = toMessageResponse(msg)
	}

	log.Printf("[API] SendMessage completed conversation_id=%s duration=%v", id, time.Since(start))

	writeJSON(w, http.StatusOK, SendMessageResponse{
		Success:  true,
		Messages: messages,
	})
}

// ConversationResponse represents the response for fetching a conversation
type ConversationResponse struct {
	Success      bool                 `json:"success"`
	Conversation *models.Conversation `json:"conversation"`
}

// Get handles GET /api/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conv, err := h.svc.GetConversation(id)
	if errors.Is(err, db.ErrNotFound) {
		log.Printf("[API] Get conversation failed: not found conversation_id=%s", id)
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		log.Printf("[API] Get conversation failed err=%v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch conversation")
		return
	}

	writeJSON(w, http.StatusOK, ConversationResponse{
		Success:      true,
		Conversation: conv,
	})
}
