package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys on every pooled connection and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS source_pdfs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			storage_path TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'processing', 'ready', 'error')),
			total_cards_extracted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_source_pdfs_user ON source_pdfs (user_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS flashcards (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			source_pdf_id TEXT NOT NULL,
			card_type TEXT NOT NULL CHECK (card_type IN ('grammar', 'vocabulary')),
			question_de TEXT NOT NULL,
			answer_tr TEXT NOT NULL,
			explanation_de TEXT,
			chapter_number INTEGER,
			chapter_title TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (source_pdf_id) REFERENCES source_pdfs(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_flashcards_user ON flashcards (user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_flashcards_source ON flashcards (source_pdf_id);`,
		`CREATE TABLE IF NOT EXISTS writing_exercises (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			prompt_de TEXT NOT NULL,
			user_text_tr TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS writing_corrections (
			id TEXT PRIMARY KEY,
			exercise_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			corrections TEXT NOT NULL,
			variant_business TEXT NOT NULL,
			variant_colloquial TEXT NOT NULL,
			variant_c1 TEXT NOT NULL,
			suggested_deyimler TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (exercise_id) REFERENCES writing_exercises(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS mistake_tracker (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			mistake_type TEXT NOT NULL,
			mistake_pattern TEXT NOT NULL,
			example_wrong TEXT NOT NULL,
			example_correct TEXT NOT NULL,
			occurrences INTEGER NOT NULL DEFAULT 1,
			mastery_level INTEGER NOT NULL DEFAULT 0 CHECK (mastery_level BETWEEN 0 AND 5),
			last_seen DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE (user_id, mistake_type, mistake_pattern)
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
