package service

import (
	"errors"
	"log"
	"strings"

	"relationship-coach/internal/coach"
	"relationship-coach/internal/db"
	"relationship-coach/internal/models"
)

// Service orchestrates the user directory, the conversation store and the
// response selector. Each store call is individually atomic; the start
// sequence as a whole is not transactional, and a failure partway through
// leaves the already-written state in place.
type Service struct {
	db       *db.DB
	selector *coach.Selector
}

// NewService creates a conversation service
func NewService(database *db.DB, selector *coach.Selector) *Service {
	return &Service{
		db:       database,
		selector: selector,
	}
}

// StartInput holds the fields for starting a conversation.
type StartInput struct {
	UserName         string
	UserEmail        string
	Phone            string
	RelationshipType models.RelationshipType
	InitialMessage   string
	UrgencyLevel     models.UrgencyLevel
}

// StartConversation finds or creates the user by email, creates a conversation
// seeded with the initial user message, records the conversation against the
// user, and appends the scripted opener reply. Returns the conversation ID.
func (s *Service) StartConversation(in StartInput) (string, error) {
	log.Printf("[SERVICE] StartConversation started email=%s type=%s urgency=%s",
		in.UserEmail, in.RelationshipType, in.UrgencyLevel)

	user, err := s.db.GetUserByEmail(in.UserEmail)
	if errors.Is(err, db.ErrNotFound) {
		user, err = s.db.CreateUser(db.NewUser{
			Name:  in.UserName,
			Email: in.UserEmail,
			Phone: strings.TrimSpace(in.Phone),
		})
	}
	if err != nil {
		log.Printf("[SERVICE] StartConversation failed: user lookup err=%v", err)
		return "", err
	}

	conv, err := s.db.CreateConversation(db.NewConversation{
		UserID:           user.ID,
		UserName:         in.UserName,
		UserEmail:        in.UserEmail,
		RelationshipType: in.RelationshipType,
		UrgencyLevel:     in.UrgencyLevel,
		InitialMessage:   in.InitialMessage,
	})
	if err != nil {
		log.Printf("[SERVICE] StartConversation failed: create conversation err=%v", err)
		return "", err
	}

	if err := s.db.AddConversationRef(user.ID, conv.ID); err != nil {
		log.Printf("[SERVICE] StartConversation failed: add conversation ref err=%v", err)
		return "", err
	}

	opener := s.selector.Opener(conv.RelationshipType, conv.UrgencyLevel)
	if _, err := s.db.AppendMessage(conv.ID, models.SenderCoach, opener); err != nil {
		log.Printf("[SERVICE] StartConversation failed: append opener err=%v", err)
		return "", err
	}

	log.Printf("[SERVICE] StartConversation completed conversation_id=%s user_id=%s", conv.ID, user.ID)
	return conv.ID, nil
}

// PostMessage appends the user's message and the scripted coach reply to an
// existing conversation. Returns exactly the two new messages in append order.
func (s *Service) PostMessage(conversationID, content string) ([]models.Message, error) {
	conv, err := s.db.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.db.AppendMessage(conversationID, models.SenderUser, content)
	if err != nil {
		return nil, err
	}

	reply := s.selector.FollowUp(content, conv.RelationshipType)
	coachMsg, err := s.db.AppendMessage(conversationID, models.SenderCoach, reply)
	if err != nil {
		return nil, err
	}

	log.Printf("[SERVICE] PostMessage completed conversation_id=%s", conversationID)
	return []models.Message{*userMsg, *coachMsg}, nil
}

// GetConversation returns a conversation with its full transcript
func (s *Service) GetConversation(conversationID string) (*models.Conversation, error) {
	return s.db.GetConversation(conversationID)
}
