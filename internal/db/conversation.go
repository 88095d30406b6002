package db

import (
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"relationship-coach/internal/models"
)

// NewConversation holds the fields for creating a conversation.
// InitialMessage is seeded as the first user message of the transcript.
type NewConversation struct {
	UserID           string
	UserName         string
	UserEmail        string
	RelationshipType models.RelationshipType
	UrgencyLevel     models.UrgencyLevel
	InitialMessage   string
}

// CreateConversation creates a new conversation with its first user message.
// The conversation row and the seeded message are written in one locked unit.
func (d *DB) CreateConversation(nc NewConversation) (*models.Conversation, error) {
	if strings.TrimSpace(nc.UserID) == "" {
		return nil, validationErr("userId", "required")
	}
	if strings.TrimSpace(nc.UserName) == "" {
		return nil, validationErr("userName", "required")
	}
	if strings.TrimSpace(nc.UserEmail) == "" {
		return nil, validationErr("userEmail", "required")
	}
	if nc.RelationshipType == "" {
		return nil, validationErr("relationshipType", "required")
	}
	if !nc.RelationshipType.Valid() {
		return nil, validationErr("relationshipType", "unknown value "+string(nc.RelationshipType))
	}
	urgency := nc.UrgencyLevel
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	if !urgency.Valid() {
		return nil, validationErr("urgencyLevel", "unknown value "+string(nc.UrgencyLevel))
	}
	if strings.TrimSpace(nc.InitialMessage) == "" {
		return nil, validationErr("initialMessage", "required")
	}

	return WithLockResult(d, func() (*models.Conversation, error) {
		id := uuid.NewString()
		now := time.Now().UTC()

		log.Printf("[DB] CreateConversation started conversation_id=%s user_id=%s type=%s urgency=%s",
			id, nc.UserID, nc.RelationshipType, urgency)

		_, err := d.db.Exec(
			`INSERT INTO conversations
			(id, user_id, user_name, user_email, relationship_type, urgency_level, status, assigned_coach, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, nc.UserID, nc.UserName, nc.UserEmail,
			string(nc.RelationshipType), string(urgency),
			string(models.StatusPending), "", now, now,
		)
		if err != nil {
			log.Printf("[DB] CreateConversation failed: exec error err=%v", err)
			return nil, err
		}

		_, err = d.db.Exec(
			`INSERT INTO messages (conversation_id, sender, content, created_at) VALUES (?, ?, ?, ?)`,
			id, string(models.SenderUser), nc.InitialMessage, now,
		)
		if err != nil {
			log.Printf("[DB] CreateConversation failed: seed message error err=%v", err)
			return nil, err
		}

		log.Printf("[DB] CreateConversation completed conversation_id=%s", id)

		return &models.Conversation{
			ID:               id,
			UserID:           nc.UserID,
			UserName:         nc.UserName,
			UserEmail:        nc.UserEmail,
			RelationshipType: nc.RelationshipType,
			UrgencyLevel:     urgency,
			Messages: []models.Message{{
				Sender:    models.SenderUser,
				Content:   nc.InitialMessage,
				Timestamp: now,
			}},
			Status:    models.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	})
}

// AppendMessage appends a message to a conversation and touches updated_at.
// updated_at must strictly increase with each append, so the new timestamp is
// clamped just past the previous one when the clock has not advanced.
func (d *DB) AppendMessage(conversationID string, sender models.Sender, content string) (*models.Message, error) {
	if !sender.Valid() {
		return nil, validationErr("sender", "unknown value "+string(sender))
	}
	if content == "" {
		return nil, validationErr("content", "required")
	}

	return WithLockResult(d, func() (*models.Message, error) {
		log.Printf("[DB] AppendMessage started conversation_id=%s sender=%s", conversationID, sender)

		var updatedAt time.Time
		err := d.db.QueryRow(
			`SELECT updated_at FROM conversations WHERE id = ?`,
			conversationID,
		).Scan(&updatedAt)
		if err == sql.ErrNoRows {
			log.Printf("[DB] AppendMessage failed: conversation not found conversation_id=%s", conversationID)
			return nil, ErrNotFound
		}
		if err != nil {
			log.Printf("[DB] AppendMessage failed: query error err=%v", err)
			return nil, err
		}

		now := time.Now().UTC()
		if !now.After(updatedAt) {
			now = updatedAt.Add(time.Nanosecond)
		}

		_, err = d.db.Exec(
			`INSERT INTO messages (conversation_id, sender, content, created_at) VALUES (?, ?, ?, ?)`,
			conversationID, string(sender), content, now,
		)
		if err != nil {
			log.Printf("[DB] AppendMessage failed: insert error err=%v", err)
			return nil, err
		}

		_, err = d.db.Exec(
			`UPDATE conversations SET updated_at = ? WHERE id = ?`,
			now, conversationID,
		)
		if err != nil {
			log.Printf("[DB] AppendMessage failed: touch error err=%v", err)
			return nil, err
		}

		log.Printf("[DB] AppendMessage completed conversation_id=%s sender=%s", conversationID, sender)

		return &models.Message{
			Sender:    sender,
			Content:   content,
			Timestamp: now,
		}, nil
	})
}

// GetConversation retrieves a conversation with its full message transcript
func (d *DB) GetConversation(id string) (*models.Conversation, error) {
	return WithLockResult(d, func() (*models.Conversation, error) {
		row := d.db.QueryRow(
			`SELECT id, user_id, user_name, user_email, relationship_type, urgency_level, status, assigned_coach, created_at, updated_at
			FROM conversations WHERE id = ?`,
			id,
		)

		var conv models.Conversation
		var relType, urgency, status string
		err := row.Scan(&conv.ID, &conv.UserID, &conv.UserName, &conv.UserEmail,
			&relType, &urgency, &status, &conv.AssignedCoach, &conv.CreatedAt, &conv.UpdatedAt)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		conv.RelationshipType = models.RelationshipType(relType)
		conv.UrgencyLevel = models.UrgencyLevel(urgency)
		conv.Status = models.ConversationStatus(status)

		rows, err := d.db.Query(
			`SELECT sender, content, created_at FROM messages WHERE conversation_id = ? ORDER BY id ASC`,
			id,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		for rows.Next() {
			var msg models.Message
			var sender string
			if err := rows.Scan(&sender, &msg.Content, &msg.Timestamp); err != nil {
				return nil, err
			}
			msg.Sender = models.Sender(sender)
			conv.Messages = append(conv.Messages, msg)
		}

		return &conv, rows.Err()
	})
}
