package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileInfersTypes(t *testing.T) {
	ds, err := New("mixed", []Column{
		{Name: "Amount", Values: []any{1.5, 2.0, nil}},
		{Name: "Label", Values: []any{"a", "b", "a"}},
		{Name: "Active", Values: []any{true, false, true}},
		{Name: "When", Values: []any{time.Now(), time.Now(), nil}},
		{Name: "Odd", Values: []any{1.0, "two", 3.0}},
	})
	require.NoError(t, err)

	s := Profile(ds)
	require.Len(t, s.Columns, 5)
	assert.Equal(t, 3, s.Rows)

	types := map[string]ColumnType{}
	for _, c := range s.Columns {
		types[c.Name] = c.Type
	}
	assert.Equal(t, TypeNumber, types["Amount"])
	assert.Equal(t, TypeString, types["Label"])
	assert.Equal(t, TypeBool, types["Active"])
	assert.Equal(t, TypeTime, types["When"])
	assert.Equal(t, TypeMixed, types["Odd"])
}

func TestProfileDistinctAndExample(t *testing.T) {
	ds, err := New("d", []Column{
		{Name: "Label", Values: []any{"a", "b", "a", nil}},
	})
	require.NoError(t, err)

	s := Profile(ds)
	c := s.Columns[0]
	assert.Equal(t, 2, c.Distinct)
	assert.Equal(t, "a", c.Example)
}

func TestProfileEmptyColumnDefaultsToString(t *testing.T) {
	ds, err := New("d", []Column{{Name: "Empty", Values: []any{nil, nil}}})
	require.NoError(t, err)

	s := Profile(ds)
	assert.Equal(t, TypeString, s.Columns[0].Type)
	assert.Equal(t, 0, s.Columns[0].Distinct)
	assert.Empty(t, s.Columns[0].Example)
}

func TestProfileIsIdempotent(t *testing.T) {
	ds, err := New("d", []Column{
		{Name: "Amount", Values: []any{1.0, 2.0}},
	})
	require.NoError(t, err)

	first := Profile(ds)
	second := Profile(ds)
	assert.Equal(t, first, second)
}

func TestSummaryRendersColumns(t *testing.T) {
	ds, err := New("tolls", []Column{
		{Name: "Toll Name", Values: []any{"North Gate", "South Gate"}},
		{Name: "Revenue", Values: []any{1200.5, 980.0}},
	})
	require.NoError(t, err)

	got := Profile(ds).Summary()
	assert.Contains(t, got, "Rows: 2")
	assert.Contains(t, got, `- "Toll Name" (string, e.g. "North Gate")`)
	assert.Contains(t, got, `- "Revenue" (number, e.g. "1200.5")`)
}
