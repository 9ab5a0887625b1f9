package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid payload", func(t *testing.T) {
		t.Parallel()

		items, err := Parse([]byte(`[
			{"id": "a", "domain": "words", "category": "food", "level": 1},
			{"id": "b", "domain": "verbs", "category": "regular", "level": 2}
		]`))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].ID)
		assert.Equal(t, domain.ItemDomainVerbs, items[1].Domain)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("invalid entry", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte(`[{"id": "", "domain": "words", "level": 1}]`))
		assert.ErrorIs(t, err, domain.ErrEmptyItemID)

		_, err = Parse([]byte(`[{"id": "a", "domain": "nouns", "level": 1}]`))
		assert.ErrorIs(t, err, domain.ErrInvalidItemDomain)
	})

	t.Run("duplicate within domain", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte(`[
			{"id": "a", "domain": "words", "level": 1},
			{"id": "a", "domain": "words", "level": 1}
		]`))
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("same id in different domains is allowed", func(t *testing.T) {
		t.Parallel()

		items, err := Parse([]byte(`[
			{"id": "a", "domain": "words", "level": 1},
			{"id": "a", "domain": "verbs", "level": 1}
		]`))
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("embedded default", func(t *testing.T) {
		t.Parallel()

		items, err := Load("")
		require.NoError(t, err)
		require.NotEmpty(t, items)

		grouped := ByDomain(items)
		for _, itemDomain := range domain.AllItemDomains() {
			assert.NotEmpty(t, grouped[itemDomain], "default catalog covers %s", itemDomain)
		}
	})

	t.Run("from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "catalog.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"id": "x", "domain": "phrases", "level": 1}]`), 0o600))

		items, err := Load(path)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "x", items[0].ID)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestByDomain_PreservesOrder(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{ID: "w2", Domain: domain.ItemDomainWords, Level: 1},
		{ID: "v1", Domain: domain.ItemDomainVerbs, Level: 1},
		{ID: "w1", Domain: domain.ItemDomainWords, Level: 1},
	}

	grouped := ByDomain(items)
	require.Len(t, grouped[domain.ItemDomainWords], 2)
	assert.Equal(t, "w2", grouped[domain.ItemDomainWords][0].ID)
	assert.Equal(t, "w1", grouped[domain.ItemDomainWords][1].ID)
}

func TestCategories(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{ID: "w1", Domain: domain.ItemDomainWords, Category: "food", Level: 1},
		{ID: "w2", Domain: domain.ItemDomainWords, Category: "travel", Level: 1},
		{ID: "w3", Domain: domain.ItemDomainWords, Category: "food", Level: 1},
		{ID: "v1", Domain: domain.ItemDomainVerbs, Category: "regular", Level: 1},
	}

	assert.Equal(t, []string{"food", "travel"}, Categories(items, domain.ItemDomainWords))
	assert.Equal(t, []string{"regular"}, Categories(items, domain.ItemDomainVerbs))
	assert.Empty(t, Categories(items, domain.ItemDomainPhrases))
}
