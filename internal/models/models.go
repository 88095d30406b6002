package models

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderCoach Sender = "coach"
)

// Valid reports whether the sender is a known value.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderCoach
}

// RelationshipType is the category of relationship a conversation concerns.
type RelationshipType string

const (
	RelationshipRomantic   RelationshipType = "romantic"
	RelationshipFamily     RelationshipType = "family"
	RelationshipFriendship RelationshipType = "friendship"
	RelationshipWorkplace  RelationshipType = "workplace"
	RelationshipOther      RelationshipType = "other"
)

// Valid reports whether the relationship type is a known value.
func (r RelationshipType) Valid() bool {
	switch r {
	case RelationshipRomantic, RelationshipFamily, RelationshipFriendship,
		RelationshipWorkplace, RelationshipOther:
		return true
	}
	return false
}

// UrgencyLevel is the user's self-assessment of how pressing their situation is.
type UrgencyLevel string

const (
	UrgencyLow       UrgencyLevel = "low"
	UrgencyMedium    UrgencyLevel = "medium"
	UrgencyHigh      UrgencyLevel = "high"
	UrgencyEmergency UrgencyLevel = "emergency"
)

// Valid reports whether the urgency level is a known value.
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// ConversationStatus is the workflow state of a conversation.
// No operation transitions it yet; it is written once at creation.
type ConversationStatus string

const (
	StatusActive   ConversationStatus = "active"
	StatusPending  ConversationStatus = "pending"
	StatusResolved ConversationStatus = "resolved"
	StatusClosed   ConversationStatus = "closed"
)

// SubscriptionStatus is the user's subscription state.
type SubscriptionStatus string

const (
	SubscriptionNone      SubscriptionStatus = "none"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionMonthly   SubscriptionStatus = "monthly"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Message is a single entry in a conversation transcript.
// Messages are immutable once appended; insertion order is the transcript order.
type Message struct {
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a persisted thread of messages between one user and the
// automated coach. Messages are embedded and append-only.
type Conversation struct {
	ID               string             `json:"id"`
	UserID           string             `json:"userId"`
	UserName         string             `json:"userName"`
	UserEmail        string             `json:"userEmail"`
	RelationshipType RelationshipType   `json:"relationshipType"`
	UrgencyLevel     UrgencyLevel       `json:"urgencyLevel"`
	Messages         []Message          `json:"messages"`
	Status           ConversationStatus `json:"status"`
	AssignedCoach    string             `json:"assignedCoach,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// User is a registered profile identified by email.
type User struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	Age                *int               `json:"age,omitempty"`
	ConversationIDs    []string           `json:"conversationIds"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
}
