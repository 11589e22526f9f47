package ingest

import (
	"context"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/storage"
)

// Documents lists and deletes a user's source documents.
type Documents struct {
	docs    storage.DocumentStore
	objects ObjectStore
	index   CardIndex
}

// NewDocuments creates a Documents service. index may be nil.
func NewDocuments(docs storage.DocumentStore, objects ObjectStore, index CardIndex) *Documents {
	return &Documents{docs: docs, objects: objects, index: index}
}

// List returns the user's documents, newest first.
func (d *Documents) List(ctx context.Context, userID string) ([]storage.Document, error) {
	return d.docs.ListByUser(ctx, userID)
}

// Delete removes the stored object, then the document row with its cards.
func (d *Documents) Delete(ctx context.Context, userID, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := d.docs.GetByID(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := d.objects.Remove(ctx, doc.StoragePath); err != nil {
		return err
	}
	if err := d.docs.Delete(ctx, userID, documentID); err != nil {
		return err
	}

	if d.index != nil {
		if err := d.index.RemoveDocument(ctx, userID, documentID); err != nil {
			logger.WarnContext(ctx, "failed to remove flashcards from index", "document_id", documentID, "error", err)
		}
	}
	logger.InfoContext(ctx, "document deleted", "document_id", documentID, "storage_path", doc.StoragePath)
	return nil
}
