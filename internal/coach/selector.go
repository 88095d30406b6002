package coach

import (
	"strings"

	"relationship-coach/internal/models"
)

// Selector deterministically picks scripted coach replies from a ReplyBook.
// It holds no mutable state and never fails: every input has a defined reply
// via the fallback paths.
type Selector struct {
	book *ReplyBook
}

// NewSelector creates a selector over the given reply book.
// A nil book selects from the built-in defaults.
func NewSelector(book *ReplyBook) *Selector {
	if book == nil {
		book = DefaultBook()
	}
	return &Selector{book: book}
}

// Opener returns the coach's first reply for a new conversation, looked up by
// relationship type then urgency level. Pairs absent from the opener table
// (workplace, other, emergency, or anything unrecognized) get the fixed fallback.
func (s *Selector) Opener(relationshipType models.RelationshipType, urgencyLevel models.UrgencyLevel) string {
	if levels, ok := s.book.Openers[relationshipType]; ok {
		if reply, ok := levels[urgencyLevel]; ok {
			return reply
		}
	}
	return s.book.OpenerFallback
}

// FollowUp returns the coach's reply to a message in an existing conversation.
// The cascade rules are evaluated in order against the lowercased message and
// the first match wins; a message containing both "fight" and "trust" always
// gets the conflict reply. When nothing matches, the per-type default applies,
// then the generic fallback.
func (s *Selector) FollowUp(message string, relationshipType models.RelationshipType) string {
	lower := strings.ToLower(message)

	for _, rule := range s.book.Cascade {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Reply
			}
		}
	}

	if reply, ok := s.book.FollowUpDefaults[relationshipType]; ok {
		return reply
	}
	return s.book.FollowUpFallback
}
