package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dersdefteri/internal/objectstore"
	"dersdefteri/internal/service"
)

func TestDocuments_ListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := uploadOne(t, env, "kitap.pdf")
	_, err := NewPipeline(env.docs, env.objects, &fakeExtractor{reply: scenarioResponse}, nil, time.Hour).
		Process(ctx, env.userID, doc.ID)
	require.NoError(t, err)

	index := &fakeIndex{}
	d := NewDocuments(env.docs, env.objects, index)

	listed, err := d.List(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, d.Delete(ctx, env.userID, doc.ID))

	_, err = env.objects.Open(doc.StoragePath)
	assert.True(t, errors.Is(err, objectstore.ErrNotFound))

	cards, err := env.cards.ListByUser(ctx, env.userID)
	require.NoError(t, err)
	assert.Empty(t, cards, "cards are removed with their document")
	assert.Equal(t, []string{doc.ID}, index.removed)

	err = d.Delete(ctx, env.userID, doc.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestDocuments_Delete_OtherUser(t *testing.T) {
	env := newTestEnv(t)
	doc := uploadOne(t, env, "kitap.pdf")
	d := NewDocuments(env.docs, env.objects, nil)

	err := d.Delete(context.Background(), "someone-else", doc.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))

	f, err := env.objects.Open(doc.StoragePath)
	require.NoError(t, err, "object of another user must stay")
	_ = f.Close()
}
