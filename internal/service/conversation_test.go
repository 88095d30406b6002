package service

import (
	"errors"
	"os"
	"testing"

	"relationship-coach/internal/coach"
	"relationship-coach/internal/db"
	"relationship-coach/internal/models"
)

func setupTestService(t *testing.T) (*Service, *db.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_svc_*.db")
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

	svc := NewService(database, coach.NewSelector(nil))

	cleanup := func() {
		database.Close()
		os.Remove(tmpFile.Name())
	}

	return svc, database, cleanup
}

func startInput() StartInput {
	return StartInput{
		UserName:         "Maya",
		UserEmail:        "maya@example.com",
		RelationshipType: models.RelationshipRomantic,
		InitialMessage:   "I need some help with my relationship",
		UrgencyLevel:     models.UrgencyHigh,
	}
}

func TestStartConversation_CreatesTwoMessages(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	id, err := svc.StartConversation(startInput())
	if err != nil {
		t.Fatalf("failed to start conversation: %v", err)
	}

	conv, err := svc.GetConversation(id)
	if err != nil {
		t.Fatalf("failed to get conversation: %v", err)
	}

	if len(conv.Messages) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Sender != models.SenderUser {
		t.Errorf("expected first message from user, got '%s'", conv.Messages[0].Sender)
	}
	if conv.Messages[0].Content != "I need some help with my relationship" {
		t.Errorf("expected literal initial message, got %q", conv.Messages[0].Content)
	}
	if conv.Messages[1].Sender != models.SenderCoach {
		t.Errorf("expected second message from coach, got '%s'", conv.Messages[1].Sender)
	}

	wantOpener := coach.NewSelector(nil).Opener(models.RelationshipRomantic, models.UrgencyHigh)
	if conv.Messages[1].Content != wantOpener {
		t.Errorf("expected the high-urgency romantic opener, got %q", conv.Messages[1].Content)
	}
}

func TestStartConversation_ReusesUserByEmail(t *testing.T) {
	svc, database, cleanup := setupTestService(t)
	defer cleanup()

	first, err := svc.StartConversation(startInput())
	if err != nil {
		t.Fatalf("failed to start first conversation: %v", err)
	}

	in := startInput()
	in.UserName = "Maya2"
	in.UserEmail = "MAYA@example.com"
	second, err := svc.StartConversation(in)
	if err != nil {
		t.Fatalf("failed to start second conversation: %v", err)
	}

	user, err := database.GetUserByEmail("maya@example.com")
	if err != nil {
		t.Fatalf("failed to look up user: %v", err)
	}

	if len(user.ConversationIDs) != 2 {
		t.Fatalf("expected 2 conversation refs on one user, got %d", len(user.ConversationIDs))
	}
	if user.ConversationIDs[0] != first || user.ConversationIDs[1] != second {
		t.Errorf("expected refs [%s %s], got %v", first, second, user.ConversationIDs)
	}

	// The original profile name is kept; only the conversation snapshot differs
	if user.Name != "Maya" {
		t.Errorf("expected user name 'Maya', got '%s'", user.Name)
	}

	conv, err := svc.GetConversation(second)
	if err != nil {
		t.Fatalf("failed to get second conversation: %v", err)
	}
	if conv.UserName != "Maya2" {
		t.Errorf("expected conversation snapshot name 'Maya2', got '%s'", conv.UserName)
	}
	if conv.UserID != user.ID {
		t.Errorf("expected conversation bound to user %s, got %s", user.ID, conv.UserID)
	}
}

func TestStartConversation_ValidationPropagates(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	in := startInput()
	in.RelationshipType = ""
	_, err := svc.StartConversation(in)

	var validationErr *db.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestPostMessage_ReturnsPair(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	id, err := svc.StartConversation(startInput())
	if err != nil {
		t.Fatalf("failed to start conversation: %v", err)
	}

	before, err := svc.GetConversation(id)
	if err != nil {
		t.Fatalf("failed to get conversation: %v", err)
	}

	pair, err := svc.PostMessage(id, "we keep fighting")
	if err != nil {
		t.Fatalf("failed to post message: %v", err)
	}

	if len(pair) != 2 {
		t.Fatalf("expected exactly 2 messages returned, got %d", len(pair))
	}
	if pair[0].Sender != models.SenderUser || pair[0].Content != "we keep fighting" {
		t.Errorf("expected user message first, got %+v", pair[0])
	}

	wantReply := coach.NewSelector(nil).FollowUp("we keep fighting", models.RelationshipRomantic)
	if pair[1].Sender != models.SenderCoach || pair[1].Content != wantReply {
		t.Errorf("expected the conflict-pattern coach reply, got %+v", pair[1])
	}

	after, err := svc.GetConversation(id)
	if err != nil {
		t.Fatalf("failed to get conversation: %v", err)
	}

	if len(after.Messages) != len(before.Messages)+2 {
		t.Errorf("expected transcript to grow by 2, got %d -> %d", len(before.Messages), len(after.Messages))
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Error("expected updatedAt to strictly increase after posting")
	}
}

func TestPostMessage_NotFound(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.PostMessage("no-such-id", "hello?")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.GetConversation("no-such-id")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
