package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

func TestNextSort(t *testing.T) {
	s := NextSort(nil, "color")
	assert.Equal(t, &Sort{Field: "color", Direction: Asc}, s)

	s = NextSort(s, "color")
	assert.Equal(t, &Sort{Field: "color", Direction: Desc}, s)

	s = NextSort(s, "color")
	assert.Nil(t, s)

	s = NextSort(&Sort{Field: "color", Direction: Desc}, "year")
	assert.Equal(t, &Sort{Field: "year", Direction: Asc}, s)
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("", "desc")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = ParseSort("year", "")
	require.NoError(t, err)
	assert.Equal(t, &Sort{Field: "year", Direction: Asc}, s)

	s, err = ParseSort(SortModelAxis, "desc")
	require.NoError(t, err)
	assert.Equal(t, &Sort{Field: SortModelAxis, Direction: Desc}, s)

	_, err = ParseSort("designer", "asc")
	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))

	_, err = ParseSort("color", "up")
	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
}

func TestSortRows(t *testing.T) {
	rows := Rows(testCatalog())
	require.Len(t, rows, 6)
	assert.Equal(t, "Hot Rod Special", rows[2].Name)

	t.Run("ascending by color compares bytes", func(t *testing.T) {
		r := append([]Row(nil), rows...)
		SortRows(r, &Sort{Field: "color", Direction: Asc})
		var colors []string
		for _, row := range r {
			c, _ := row.Variant.Attr(domain.VariantColor)
			colors = append(colors, c)
		}
		assert.Equal(t, []string{"Metallic Red", "Spectraflame Blue", "black", "blue", "orange", "purple"}, colors)
	})

	t.Run("absent attribute sorts as empty string", func(t *testing.T) {
		r := append([]Row(nil), rows...)
		SortRows(r, &Sort{Field: "wheels", Direction: Desc})
		assert.Equal(t, "V5", r[0].Variant.ID)
		// Remaining rows keep their original relative order.
		assert.Equal(t, "V1", r[1].Variant.ID)
		assert.Equal(t, "V2", r[2].Variant.ID)
	})

	t.Run("model axis", func(t *testing.T) {
		r := append([]Row(nil), rows...)
		SortRows(r, &Sort{Field: SortModelAxis, Direction: Desc})
		assert.Equal(t, "Hot_Rod_Special", r[0].ModelKey)
		assert.Equal(t, "Batmobile", r[len(r)-1].ModelKey)
	})

	t.Run("nil sort keeps order", func(t *testing.T) {
		r := append([]Row(nil), rows...)
		SortRows(r, nil)
		assert.Equal(t, rows, r)
	})
}
