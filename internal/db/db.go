package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            full_name TEXT NOT NULL,
            username TEXT NOT NULL UNIQUE,
            personal_email TEXT NOT NULL,
            college_email TEXT NOT NULL DEFAULT '',
            phone TEXT,
            password_hash TEXT NOT NULL,
            email_verified BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_personal_email_idx ON users (personal_email);`,
		`CREATE TABLE IF NOT EXISTS posts (
            id SERIAL PRIMARY KEY,
            owner_id INT NOT NULL REFERENCES users(id),
            owner_email TEXT NOT NULL DEFAULT '',
            type TEXT NOT NULL CHECK (type IN ('need', 'sell')),
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            price NUMERIC CHECK (price IS NULL OR price >= 0),
            image_urls TEXT[] NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            expires_at TIMESTAMPTZ
        );`,
		`CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS requests (
            id SERIAL PRIMARY KEY,
            post_id INT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
            post_owner_id INT NOT NULL REFERENCES users(id),
            requester_id INT NOT NULL REFERENCES users(id),
            type TEXT NOT NULL,
            post_title TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (post_id, requester_id)
        );`,
		`CREATE TABLE IF NOT EXISTS conversations (
            id SERIAL PRIMARY KEY,
            request_id INT NOT NULL UNIQUE REFERENCES requests(id),
            post_id INT NOT NULL,
            owner_id INT NOT NULL REFERENCES users(id),
            requester_id INT NOT NULL REFERENCES users(id),
            status TEXT NOT NULL DEFAULT 'active',
            last_message TEXT,
            last_message_at TIMESTAMPTZ,
            owner_unread INT NOT NULL DEFAULT 0,
            requester_unread INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            conversation_id INT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            sender_id INT NOT NULL REFERENCES users(id),
            text TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS messages_conversation_idx ON messages (conversation_id, created_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
