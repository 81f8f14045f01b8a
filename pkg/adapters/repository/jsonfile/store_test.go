package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

const snapshot = `[
  {"lnk": "Batmobile", "ds": "Larry Wood", "d": [
    {"y": "1968", "c": "black", "p": "t", "id": "V123"},
    {"y": "1989", "c": "", "id": "V124"}
  ]},
  {"lnk": "Hot_Rod_Special", "dsc": "A &amp; B", "d": [{"y": "FTE"}]}
]`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "carsdata.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStore_Load(t *testing.T) {
	store := NewStore(writeFile(t, snapshot))

	models, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)

	bat := models[0]
	assert.Equal(t, "Batmobile", bat.Key)
	assert.Equal(t, "Larry Wood", *bat.Designer)
	assert.Nil(t, bat.Description)
	require.Len(t, bat.Variants, 2)
	assert.True(t, bat.Variants[0].HasImage())

	// Present-but-empty stays distinguishable from absent.
	require.NotNil(t, bat.Variants[1].Color)
	assert.Equal(t, "", *bat.Variants[1].Color)
	assert.Nil(t, bat.Variants[1].Series)

	assert.Equal(t, "", models[1].Variants[0].ID)
}

func TestStore_LoadFailures(t *testing.T) {
	ctx := context.Background()

	_, err := NewStore(filepath.Join(t.TempDir(), "missing.json")).Load(ctx)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = NewStore(writeFile(t, `{"lnk": `)).Load(ctx)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))

	_, err = NewStore(writeFile(t, `{"lnk": "not a list"}`)).Load(ctx)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(writeFile(t, snapshot))

	models, err := store.Load(ctx)
	require.NoError(t, err)
	models = append(models, domain.Model{Key: "New", Variants: []domain.Variant{{Year: "2024", ID: "N1"}}})
	require.NoError(t, store.Save(ctx, models))

	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models, again)

	entries, err := os.ReadDir(filepath.Dir(store.path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
