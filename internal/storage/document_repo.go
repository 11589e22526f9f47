package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks dersdefteri/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// DocumentStore defines the interface for source document storage operations.
type DocumentStore interface {
	// Create registers a new document in state pending.
	Create(ctx context.Context, doc *Document) error
	// GetByID gets a document owned by userID.
	// Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, userID, id string) (*Document, error)
	// ListByUser lists the user's documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// Delete removes the document and, by cascade, its flashcards.
	Delete(ctx context.Context, userID, id string) error
	// BeginProcessing moves a pending or failed document to processing.
	// Returns ErrStatusConflict if the document is in any other state.
	BeginProcessing(ctx context.Context, userID, id string) error
	// MarkError moves a processing document to error.
	MarkError(ctx context.Context, id string) error
	// CompleteExtraction stores cards and marks the document ready in one transaction.
	CompleteExtraction(ctx context.Context, id string, cards []Flashcard) error
	// CountByStatus counts the user's documents per status.
	CountByStatus(ctx context.Context, userID string) (map[DocumentStatus]int, error)
}

// DocumentRepo provides methods for source document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, user_id, filename, storage_path, status, total_cards_extracted, created_at"

// Create inserts a new document with status pending.
// ID and CreatedAt are filled in when empty.
func (r *DocumentRepo) Create(ctx context.Context, doc *Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.Status = StatusPending
	doc.TotalCardsExtracted = 0

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO source_pdfs (id, user_id, filename, storage_path, status, total_cards_extracted, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		doc.ID, doc.UserID, doc.Filename, doc.StoragePath, doc.Status, doc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("storage path %q: %w", doc.StoragePath, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document owned by userID.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, userID, id string) (*Document, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM source_pdfs WHERE id = ? AND user_id = ?",
		id, userID,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// ListByUser lists the user's documents, newest first.
func (r *DocumentRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM source_pdfs WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// Delete removes the document. Flashcards go with it through the foreign key cascade.
func (r *DocumentRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM source_pdfs WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BeginProcessing atomically moves a pending or failed document to processing.
// A second caller racing on the same document gets ErrStatusConflict.
func (r *DocumentRepo) BeginProcessing(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE source_pdfs SET status = ?
		 WHERE id = ? AND user_id = ? AND status IN (?, ?)`,
		StatusProcessing, id, userID, StatusPending, StatusError,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	doc, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("document is %s: %w", doc.Status, ErrStatusConflict)
}

// MarkError moves a processing document to error. The card count is left as is.
func (r *DocumentRepo) MarkError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE source_pdfs SET status = ? WHERE id = ? AND status = ?",
		StatusError, id, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to mark document as failed: %w", err)
	}
	return nil
}

// CompleteExtraction inserts all cards and marks the document ready with the
// card count, all in one transaction. The document must be processing.
// Card IDs and CreatedAt are filled in on the given slice.
func (r *DocumentRepo) CompleteExtraction(ctx context.Context, id string, cards []Flashcard) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE source_pdfs SET status = ?, total_cards_extracted = ?
		 WHERE id = ? AND status = ?`,
		StatusReady, len(cards), id, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	if len(cards) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO flashcards (id, user_id, source_pdf_id, card_type, question_de, answer_tr,
			 explanation_de, chapter_number, chapter_title, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare flashcard insert: %w", err)
		}
		defer func() {
			_ = stmt.Close()
		}()

		now := time.Now().UTC()
		for i := range cards {
			card := &cards[i]
			if card.ID == "" {
				card.ID = uuid.New().String()
			}
			card.SourcePDFID = id
			card.CreatedAt = now
			if _, err := stmt.ExecContext(ctx,
				card.ID, card.UserID, card.SourcePDFID, card.CardType, card.QuestionDE, card.AnswerTR,
				card.ExplanationDE, card.ChapterNumber, card.ChapterTitle, card.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert flashcard %d: %w", i, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit extraction: %w", err)
	}
	return nil
}

// CountByStatus counts the user's documents per status.
func (r *DocumentRepo) CountByStatus(ctx context.Context, userID string) (map[DocumentStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM source_pdfs WHERE user_id = ? GROUP BY status",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[DocumentStatus]int)
	for rows.Next() {
		var status DocumentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan document count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document counts: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	if err := row.Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.StoragePath, &doc.Status,
		&doc.TotalCardsExtracted, &doc.CreatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
