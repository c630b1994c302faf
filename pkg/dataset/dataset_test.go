package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesColumnLengths(t *testing.T) {
	_, err := New("bad", []Column{
		{Name: "a", Values: []any{1.0, 2.0}},
		{Name: "b", Values: []any{1.0}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestNewRequiresColumnNames(t *testing.T) {
	_, err := New("bad", []Column{{Name: "", Values: []any{1.0}}})
	require.Error(t, err)
}

func TestNewEmptyDataset(t *testing.T) {
	ds, err := New("empty", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.RowCount())
	assert.Equal(t, 0, ds.ColumnCount())
	assert.Empty(t, ds.Rows())
}

func TestRowsRendersTimesAsStrings(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ds, err := New("events", []Column{
		{Name: "At", Values: []any{when}},
		{Name: "Count", Values: []any{3.0}},
	})
	require.NoError(t, err)

	rows := ds.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-01T12:00:00Z", rows[0]["At"])
	assert.Equal(t, 3.0, rows[0]["Count"])
}

func TestRowsReturnsFreshCopy(t *testing.T) {
	ds, err := New("d", []Column{{Name: "X", Values: []any{1.0}}})
	require.NoError(t, err)

	first := ds.Rows()
	first[0]["X"] = 99.0

	second := ds.Rows()
	assert.Equal(t, 1.0, second[0]["X"])
}

func TestColumnLookup(t *testing.T) {
	ds, err := New("d", []Column{{Name: "X", Values: []any{1.0}}})
	require.NoError(t, err)

	c, ok := ds.Column("X")
	require.True(t, ok)
	assert.Equal(t, []any{1.0}, c.Values)

	_, ok = ds.Column("Y")
	assert.False(t, ok)
}
