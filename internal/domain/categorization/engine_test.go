package categorization

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test shop name scanning against the built-in merchant tables
func TestEngine_ShopCategory(t *testing.T) {
	engine := NewEngine()

	t.Run("grocery chains", func(t *testing.T) {
		label, ok := engine.ShopCategory("korzinka uz")
		require.True(t, ok)
		assert.Equal(t, "Продукты", label)

		label, ok = engine.ShopCategory("makro express chilonzor")
		require.True(t, ok)
		assert.Equal(t, "Продукты", label)
	})

	t.Run("clothing brands", func(t *testing.T) {
		label, ok := engine.ShopCategory("zara mega planet")
		require.True(t, ok)
		assert.Equal(t, "Одежда", label)
	})

	t.Run("cyrillic merchants", func(t *testing.T) {
		label, ok := engine.ShopCategory("аптека 37")
		require.True(t, ok)
		assert.Equal(t, "Здоровье", label)

		label, ok = engine.ShopCategory("заправка на кольце")
		require.True(t, ok)
		assert.Equal(t, "Транспорт", label)
	})

	t.Run("fast food", func(t *testing.T) {
		label, ok := engine.ShopCategory("kfc maksim gorkiy")
		require.True(t, ok)
		assert.Equal(t, "Развлечения", label)
	})

	t.Run("unknown shop", func(t *testing.T) {
		_, ok := engine.ShopCategory("неизвестный ларек")
		assert.False(t, ok)
	})

	t.Run("empty name", func(t *testing.T) {
		_, ok := engine.ShopCategory("")
		assert.False(t, ok)
	})

	t.Run("first table wins on overlap", func(t *testing.T) {
		// Both kfc and аптека occur; the entertainment table is declared
		// before the health one.
		label, ok := engine.ShopCategory("kfc аптека")
		require.True(t, ok)
		assert.Equal(t, "Развлечения", label)
	})
}

// Test item keyword scanning for auto-provisioning
func TestEngine_KeywordCategory(t *testing.T) {
	engine := NewEngine()

	t.Run("groceries", func(t *testing.T) {
		label, ok := engine.KeywordCategory("свежий хлеб")
		require.True(t, ok)
		assert.Equal(t, "Продукты", label)
	})

	t.Run("entertainment", func(t *testing.T) {
		label, ok := engine.KeywordCategory("билет в кино")
		require.True(t, ok)
		assert.Equal(t, "Развлечения", label)
	})

	t.Run("uzbek keywords", func(t *testing.T) {
		label, ok := engine.KeywordCategory("issiq non")
		require.True(t, ok)
		assert.Equal(t, "Продукты", label)
	})

	t.Run("english keywords", func(t *testing.T) {
		label, ok := engine.KeywordCategory("taxi to airport")
		require.True(t, ok)
		assert.Equal(t, "Транспорт", label)
	})

	t.Run("no keyword hit", func(t *testing.T) {
		_, ok := engine.KeywordCategory("степлер")
		assert.False(t, ok)
	})
}

// Test engine construction and rebuild
func TestEngine_Build(t *testing.T) {
	t.Run("default tables are loaded", func(t *testing.T) {
		engine := NewEngine()
		assert.False(t, engine.IsEmpty())
		assert.Greater(t, engine.PatternCount(), 100)
	})

	t.Run("rebuild with empty tables", func(t *testing.T) {
		engine := NewEngine()
		engine.build(nil, nil)
		assert.True(t, engine.IsEmpty())
		assert.Equal(t, 0, engine.PatternCount())

		_, ok := engine.KeywordCategory("хлеб")
		assert.False(t, ok)
	})

	t.Run("rebuild restores matching", func(t *testing.T) {
		engine := NewEngine()
		engine.build(nil, nil)
		engine.build(vocabularies, shopVocabularies)

		label, ok := engine.KeywordCategory("хлеб")
		require.True(t, ok)
		assert.Equal(t, "Продукты", label)
	})
}

func BenchmarkEngineKeywordCategory(b *testing.B) {
	engine := NewEngine()
	items := []string{
		"свежий хлеб",
		"кока кола 1.5л",
		"такси до дома",
		"степлер канцелярский",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.KeywordCategory(items[i%len(items)])
	}
}

func BenchmarkEngineShopCategory(b *testing.B) {
	engine := NewEngine()

	names := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		names = append(names, fmt.Sprintf("korzinka filial %d", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ShopCategory(names[i%len(names)])
	}
}
