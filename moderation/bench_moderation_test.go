package moderation

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// Test_Moderation_Startup measures how long a large censored list stored in badger
// takes to become a usable caption filter.
func Test_Moderation_Startup(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelInfo)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	wordCount := 20_000

	startSeed := time.Now()
	wb := db.NewWriteBatch()
	for i := 0; i < wordCount; i++ {
		req.NoError(wb.Set([]byte(fmt.Sprintf("censored:word%d", i)), nil))
	}
	req.NoError(wb.Flush())
	t.Logf("Seeding %d words: %v", wordCount, time.Since(startSeed))

	startLoad := time.Now()
	var words []string
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // words live in the keys
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("censored:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			words = append(words, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	req.NoError(err)
	req.Len(words, wordCount)

	mod, err := NewModerator(words, '*', log)
	req.NoError(err)
	t.Logf("Startup of moderation: %v", time.Since(startLoad))

	sanitized, found := mod.Censor("say word42 now")
	req.Equal("say ****** now", sanitized)
	req.NotEmpty(found)
}
