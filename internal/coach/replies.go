package coach

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"relationship-coach/internal/models"
)

// CascadeRule pairs a set of trigger keywords with a fixed reply.
// A rule matches when the lowercased message contains any of its keywords.
type CascadeRule struct {
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// ReplyBook holds every scripted coach reply. The wording is content, not
// structure: operators can override it from a YAML file without recompiling.
type ReplyBook struct {
	// Openers is the first-reply table, keyed by relationship type then urgency.
	Openers map[models.RelationshipType]map[models.UrgencyLevel]string `yaml:"openers"`

	// OpenerFallback is returned for any (type, urgency) pair absent from Openers.
	OpenerFallback string `yaml:"opener_fallback"`

	// Cascade is the ordered keyword rule list for follow-up replies.
	// Order is a behavioral contract: the first matching rule wins.
	Cascade []CascadeRule `yaml:"cascade"`

	// FollowUpDefaults is the per-type reply when no cascade rule matches.
	FollowUpDefaults map[models.RelationshipType]string `yaml:"follow_up_defaults"`

	// FollowUpFallback is returned when no cascade rule matches and the
	// relationship type has no default.
	FollowUpFallback string `yaml:"follow_up_fallback"`
}

// DefaultBook returns the built-in reply book.
func DefaultBook() *ReplyBook {
	return &ReplyBook{
		Openers: map[models.RelationshipType]map[models.UrgencyLevel]string{
			models.RelationshipRomantic: {
				models.UrgencyHigh:   "I understand you're going through a really tough time with your partner right now. 💕 That takes courage to reach out. I'm here to help you work through this step by step. Can you tell me more about what's been happening recently?",
				models.UrgencyMedium: "Thank you for sharing about your relationship situation. 💝 Every relationship has its challenges, and I'm here to help you navigate through this. What would you say has been the biggest issue you're facing together?",
				models.UrgencyLow:    "It's wonderful that you're being proactive about your relationship! 🌟 Even small improvements can make a big difference. What aspects of your relationship would you most like to strengthen?",
			},
			models.RelationshipFamily: {
				models.UrgencyHigh:   "Family conflicts can be incredibly painful, and I can hear that this is really affecting you. 🤗 You're not alone in this. Let's work together to find a path forward. What's the most pressing issue you're dealing with right now?",
				models.UrgencyMedium: "Thank you for trusting me with your family situation. 👨‍👩‍👧‍👦 Family relationships are so important, and it's great that you want to improve things. Can you help me understand the main challenges you're facing?",
				models.UrgencyLow:    "It's beautiful that you want to strengthen your family bonds! 💛 Family relationships are worth investing in. What changes would make the biggest positive impact for everyone involved?",
			},
			models.RelationshipFriendship: {
				models.UrgencyHigh:   "Losing or struggling with friendships can be really isolating and painful. 🫂 I'm glad you reached out for support. True friendships are worth fighting for. What's been happening that's made this feel so urgent?",
				models.UrgencyMedium: "Friendship challenges can be tricky to navigate. 👯‍♀️ I'm here to help you work through whatever is going on. Can you share more about what's been troubling you about this friendship?",
				models.UrgencyLow:    "It's great that you want to invest in your friendships! 🌟 Good friends make life so much richer. What would you like to see improve or grow in your friendships?",
			},
		},
		OpenerFallback: "Thank you for reaching out. I'm here to help you work through whatever relationship challenges you're facing. Can you tell me more about what's been on your mind?",
		Cascade: []CascadeRule{
			{
				Keywords: []string{"fight", "argue"},
				Reply:    "Arguments can be so draining and hurtful. 😔 It sounds like communication has become a real challenge. One thing that often helps is learning to pause before reacting and really trying to understand what the other person is feeling underneath their words. Have you noticed any patterns in what tends to trigger these fights?",
			},
			{
				Keywords: []string{"trust", "lying", "cheating"},
				Reply:    "Trust issues cut so deep, and rebuilding trust takes time and consistency from both people. 💔 It's understandable that you're feeling hurt and uncertain. The first step is often having an honest conversation about what happened and what each person needs to feel secure again. How are you feeling about having those difficult conversations?",
			},
			{
				Keywords: []string{"distance", "growing apart", "disconnect"},
				Reply:    "That feeling of growing apart can be so lonely, even when you're still in each other's lives. 🌊 Often this happens when life gets busy and we stop making intentional time for connection. Small, consistent efforts to reconnect can make a huge difference. What used to bring you closer together that maybe has fallen by the wayside?",
			},
			{
				Keywords: []string{"communication", "talk", "listen"},
				Reply:    "Communication really is the foundation of every healthy relationship! 🗣️ Good communication isn't just about talking - it's about feeling heard and understood. One technique that works well is reflecting back what you heard before responding with your own perspective. How do conversations typically go between you two right now?",
			},
		},
		FollowUpDefaults: map[models.RelationshipType]string{
			models.RelationshipRomantic:   "Relationships take work, but they're so worth it when both people are committed to growing together. 💕 What you're experiencing is more common than you might think. Let's explore some strategies that could help. What would feel like the most important thing to address first?",
			models.RelationshipFamily:     "Family dynamics can be complex because there's so much history and emotion involved. 👨‍👩‍👧‍👦 But families can heal and grow stronger together. What you're sharing takes courage. What would it look like if this relationship was working better for everyone?",
			models.RelationshipFriendship: "Friendships go through seasons, and it's normal for them to need some attention sometimes. 🤝 The fact that you care enough to work on this shows what kind of friend you are. What does this friendship mean to you, and what would you like it to look like moving forward?",
		},
		FollowUpFallback: "Thank you for sharing more details. I can hear how much this matters to you. Let's work together to find some positive steps forward. What feels most important to address right now?",
	}
}

// LoadBook loads a reply book from a YAML file, merged over the built-in
// defaults. Only the fields present in the file are overridden.
func LoadBook(path string) (*ReplyBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ReplyBook
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse reply book: %w", err)
	}

	book := DefaultBook()
	for rt, levels := range override.Openers {
		if book.Openers[rt] == nil {
			book.Openers[rt] = make(map[models.UrgencyLevel]string)
		}
		for ul, reply := range levels {
			book.Openers[rt][ul] = reply
		}
	}
	if override.OpenerFallback != "" {
		book.OpenerFallback = override.OpenerFallback
	}
	if len(override.Cascade) > 0 {
		book.Cascade = override.Cascade
	}
	for rt, reply := range override.FollowUpDefaults {
		book.FollowUpDefaults[rt] = reply
	}
	if override.FollowUpFallback != "" {
		book.FollowUpFallback = override.FollowUpFallback
	}

	return book, nil
}
