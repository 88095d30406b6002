package db

// Migrate runs all database migrations
func (d *DB) Migrate() error {
	return d.WithLock(func() error {
		// Create users table
		_, err := d.db.Exec(`
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				phone TEXT NOT NULL DEFAULT '',
				age INTEGER,
				subscription_status TEXT NOT NULL DEFAULT 'none'
					CHECK(subscription_status IN ('none', 'trial', 'monthly', 'cancelled')),
				created_at DATETIME NOT NULL
			)
		`)
		if err != nil {
			return err
		}

		// Create conversations table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS conversations (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				user_name TEXT NOT NULL,
				user_email TEXT NOT NULL,
				relationship_type TEXT NOT NULL
					CHECK(relationship_type IN ('romantic', 'family', 'friendship', 'workplace', 'other')),
				urgency_level TEXT NOT NULL DEFAULT 'medium'
					CHECK(urgency_level IN ('low', 'medium', 'high', 'emergency')),
				status TEXT NOT NULL DEFAULT 'pending'
					CHECK(status IN ('active', 'pending', 'resolved', 'closed')),
				assigned_coach TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`)
		if err != nil {
			return err
		}

		// Create user_conversations table
		// Append-only ordered list of conversations each user has started;
		// insertion order (rowid) is the list order.
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS user_conversations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				conversation_id TEXT NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id)
			)
		`)
		if err != nil {
			return err
		}

		// Create messages table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				conversation_id TEXT NOT NULL,
				sender TEXT NOT NULL CHECK(sender IN ('user', 'coach')),
				content TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
			)
		`)
		if err != nil {
			return err
		}

		// Create indexes for better query performance
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id)",
			"CREATE INDEX IF NOT EXISTS idx_user_conversations_user ON user_conversations(user_id)",
			"CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id)",
		}

		for _, idx := range indexes {
			if _, err := d.db.Exec(idx); err != nil {
				return err
			}
		}

		return nil
	})
}
