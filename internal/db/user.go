package db

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"relationship-coach/internal/models"
)

// NewUser holds the fields for creating a user.
type NewUser struct {
	Name  string
	Email string
	Phone string
	Age   *int
}

// NormalizeEmail lowercases and trims an email address. Emails are stored
// normalized so lookups are case-insensitive exact matches.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a new user profile
func (d *DB) CreateUser(nu NewUser) (*models.User, error) {
	name := strings.TrimSpace(nu.Name)
	if name == "" {
		return nil, validationErr("name", "required")
	}
	email := NormalizeEmail(nu.Email)
	if email == "" {
		return nil, validationErr("email", "required")
	}
	if nu.Age != nil && (*nu.Age < 13 || *nu.Age > 120) {
		return nil, validationErr("age", "must be between 13 and 120")
	}

	return WithLockResult(d, func() (*models.User, error) {
		id := uuid.NewString()
		now := time.Now().UTC()

		log.Printf("[DB] CreateUser started user_id=%s email=%s", id, email)

		_, err := d.db.Exec(
			`INSERT INTO users (id, name, email, phone, age, subscription_status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, name, email, strings.TrimSpace(nu.Phone), nu.Age,
			string(models.SubscriptionNone), now,
		)
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				log.Printf("[DB] CreateUser failed: email taken email=%s", email)
				return nil, ErrEmailTaken
			}
			log.Printf("[DB] CreateUser failed: exec error err=%v", err)
			return nil, err
		}

		log.Printf("[DB] CreateUser completed user_id=%s", id)

		return &models.User{
			ID:                 id,
			Name:               name,
			Email:              email,
			Phone:              strings.TrimSpace(nu.Phone),
			Age:                nu.Age,
			SubscriptionStatus: models.SubscriptionNone,
			CreatedAt:          now,
		}, nil
	})
}

// GetUser retrieves a user by ID
func (d *DB) GetUser(id string) (*models.User, error) {
	return WithLockResult(d, func() (*models.User, error) {
		return d.getUserWhere(`id = ?`, id)
	})
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (d *DB) GetUserByEmail(email string) (*models.User, error) {
	return WithLockResult(d, func() (*models.User, error) {
		return d.getUserWhere(`email = ?`, NormalizeEmail(email))
	})
}

// getUserWhere loads a single user and their conversation refs.
// Callers must already hold the lock.
func (d *DB) getUserWhere(where string, arg any) (*models.User, error) {
	row := d.db.QueryRow(
		`SELECT id, name, email, phone, age, subscription_status, created_at
		FROM users WHERE `+where,
		arg,
	)

	var user models.User
	var age sql.NullInt64
	var subscription string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &age, &subscription, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if age.Valid {
		a := int(age.Int64)
		user.Age = &a
	}
	user.SubscriptionStatus = models.SubscriptionStatus(subscription)

	rows, err := d.db.Query(
		`SELECT conversation_id FROM user_conversations WHERE user_id = ? ORDER BY id ASC`,
		user.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var convID string
		if err := rows.Scan(&convID); err != nil {
			return nil, err
		}
		user.ConversationIDs = append(user.ConversationIDs, convID)
	}

	return &user, rows.Err()
}

// AddConversationRef appends a conversation ID to a user's conversation list.
// The append is unconditional; one call is made per conversation start.
func (d *DB) AddConversationRef(userID, conversationID string) error {
	return d.WithLock(func() error {
		log.Printf("[DB] AddConversationRef started user_id=%s conversation_id=%s", userID, conversationID)

		_, err := d.db.Exec(
			`INSERT INTO user_conversations (user_id, conversation_id) VALUES (?, ?)`,
			userID, conversationID,
		)
		if err != nil {
			log.Printf("[DB] AddConversationRef failed: exec error err=%v", err)
			return err
		}

		log.Printf("[DB] AddConversationRef completed user_id=%s conversation_id=%s", userID, conversationID)
		return nil
	})
}
