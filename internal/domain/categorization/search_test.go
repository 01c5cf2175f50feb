package categorization

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *SuggestionIndex {
	t.Helper()

	index, err := NewSuggestionIndex("")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, index.Close())
	})
	return index
}

func TestSuggestionIndex_Suggest(t *testing.T) {
	index := newTestIndex(t)

	t.Run("russian keyword", func(t *testing.T) {
		suggestions, err := index.Suggest("молоко", 5)
		require.NoError(t, err)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "Продукты", suggestions[0].Label)
		assert.Greater(t, suggestions[0].Score, 0.0)
	})

	t.Run("tolerates one typo", func(t *testing.T) {
		suggestions, err := index.Suggest("малоко", 5)
		require.NoError(t, err)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "Продукты", suggestions[0].Label)
	})

	t.Run("english keyword", func(t *testing.T) {
		suggestions, err := index.Suggest("taxi", 5)
		require.NoError(t, err)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "Транспорт", suggestions[0].Label)
	})

	t.Run("label dedup across languages", func(t *testing.T) {
		// The label itself is indexed with each of its three language
		// documents; results must carry it once.
		suggestions, err := index.Suggest("продукты", 5)
		require.NoError(t, err)
		require.Len(t, suggestions, 1)
		assert.Equal(t, "Продукты", suggestions[0].Label)
	})

	t.Run("keyword shared by two categories", func(t *testing.T) {
		suggestions, err := index.Suggest("вода", 5)
		require.NoError(t, err)
		require.Len(t, suggestions, 2)

		labels := []string{suggestions[0].Label, suggestions[1].Label}
		assert.ElementsMatch(t, []string{"Напитки", "Коммунальные услуги"}, labels)
	})

	t.Run("limit caps distinct labels", func(t *testing.T) {
		suggestions, err := index.Suggest("вода", 1)
		require.NoError(t, err)
		assert.Len(t, suggestions, 1)
	})

	t.Run("zero limit falls back to default", func(t *testing.T) {
		suggestions, err := index.Suggest("вода", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, suggestions)
	})

	t.Run("no match", func(t *testing.T) {
		suggestions, err := index.Suggest("qqqqqq", 5)
		require.NoError(t, err)
		assert.Empty(t, suggestions)
	})
}

func TestSuggestionIndex_DocumentCount(t *testing.T) {
	index := newTestIndex(t)

	// Eight labels, three languages each.
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(24), count)
}

func TestSuggestionIndex_Persistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.bleve")

	index, err := NewSuggestionIndex(path)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(24), count)
	require.NoError(t, index.Close())

	// Reopening re-indexes the same document IDs, so the count holds.
	reopened, err := NewSuggestionIndex(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reopened.Close())
	}()

	count, err = reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(24), count)

	suggestions, err := reopened.Suggest("молоко", 5)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Продукты", suggestions[0].Label)
}

func BenchmarkSuggest(b *testing.B) {
	index, err := NewSuggestionIndex("")
	if err != nil {
		b.Fatal(err)
	}
	defer index.Close()

	queries := []string{"молоко", "такси", "кино", "dori"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := index.Suggest(queries[i%len(queries)], 5); err != nil {
			b.Fatal(err)
		}
	}
}
