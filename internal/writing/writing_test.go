package writing

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"dersdefteri/internal/storage"
)

const sampleText = "Geçen hafta müşteriyle çok uzun bir toplantı yaptım ve fiyatlar hakkında konuştuk."

const sampleResponse = `Hier ist die Analyse:
{
  "corrections": [
    {"original": "müşteriyle çok uzun", "corrected": "müşteriyle oldukça uzun", "type": "Wortwahl", "explanation_de": "'oldukça' klingt im Geschäftskontext natürlicher."},
    {"original": "konuştuk", "corrected": "görüştük", "type": "stil", "explanation_de": "'görüşmek' ist formeller."}
  ],
  "variants": {
    "business_formal": "Geçtiğimiz hafta müşterimizle fiyatlandırma üzerine kapsamlı bir görüşme gerçekleştirdik.",
    "colloquial_smart": "Geçen hafta müşteriyle fiyatları konuşup durduk.",
    "c1_sophisticated": "Geçen hafta müşteriyle fiyat politikasını enine boyuna ele aldık."
  },
  "suggested_deyimler": [
    {"deyim": "enine boyuna", "meaning_de": "ausführlich", "usage": "für gründliche Diskussionen", "example_in_context": "Fiyatları enine boyuna konuştuk."}
  ]
}`

type fakeCompleter struct {
	response string
	err      error
	system   string
	prompt   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string, _ int) (string, error) {
	f.system = system
	f.prompt = prompt
	return f.response, f.err
}

type testEnv struct {
	db       *sql.DB
	writing  *storage.WritingRepo
	mistakes *storage.MistakeRepo
	userID   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, storage.Migrate(db))

	user := &storage.User{Email: "yazar@example.com", PasswordHash: "hash"}
	require.NoError(t, storage.NewUserRepo(db).Create(context.Background(), user))

	return &testEnv{
		db:       db,
		writing:  storage.NewWritingRepo(db),
		mistakes: storage.NewMistakeRepo(db),
		userID:   user.ID,
	}
}

func (e *testEnv) service(completer Completer) *Service {
	return NewService(e.writing, NewAnalyzer(completer, 4096))
}
