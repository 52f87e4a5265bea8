package storage

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopassist-ai/shopassist/internal/intent"
)

func TestProduct_InStock(t *testing.T) {
	assert.True(t, (&Product{Stock: 1}).InStock())
	assert.False(t, (&Product{Stock: 0}).InStock())
	assert.False(t, (&Product{Stock: -1}).InStock())
}

func TestProduct_EmbeddingText(t *testing.T) {
	p := &Product{Name: "UltraBook Pro", Description: "A fast laptop"}
	assert.Equal(t, "UltraBook Pro A fast laptop", p.EmbeddingText())
}

func TestSpecMap_ValueScan(t *testing.T) {
	m := SpecMap{"ram": "16GB", "cores": float64(8)}

	v, err := m.Value()
	require.NoError(t, err)

	var got SpecMap
	require.NoError(t, got.Scan(v))
	assert.Equal(t, m, got)
}

func TestSpecMap_NilValue(t *testing.T) {
	var m SpecMap
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestSpecMap_ScanNil(t *testing.T) {
	m := SpecMap{"stale": true}
	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)
}

func TestSpecMap_ScanUnsupportedType(t *testing.T) {
	var m SpecMap
	assert.Error(t, m.Scan(42))
}

func TestFloatArrayConversion_RoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.5, 0.9}

	arr := floatsToArray(vec)
	require.Len(t, arr, 3)

	back := arrayToFloats(arr)
	assert.Equal(t, vec, back)
}

func TestFloatArrayConversion_Nil(t *testing.T) {
	assert.Nil(t, floatsToArray(nil))
	assert.Nil(t, arrayToFloats(nil))

	var arr pq.Float64Array
	assert.Nil(t, arrayToFloats(arr))
}

func TestPriceClauses(t *testing.T) {
	min, max := 100.0, 500.0

	where, args := priceClauses("TRUE", nil, intent.PriceRange{})
	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)

	where, args = priceClauses("TRUE", nil, intent.PriceRange{Max: &max})
	assert.Equal(t, "TRUE AND price <= $1", where)
	assert.Equal(t, []interface{}{500.0}, args)

	where, args = priceClauses("TRUE", nil, intent.PriceRange{Min: &min, Max: &max})
	assert.Equal(t, "TRUE AND price <= $1 AND price >= $2", where)
	assert.Equal(t, []interface{}{500.0, 100.0}, args)

	// Positional arguments keep counting from the base clause's slots.
	where, args = priceClauses("search_vector @@ websearch_to_tsquery('english', $1)",
		[]interface{}{"laptop"}, intent.PriceRange{Max: &max})
	assert.Contains(t, where, "price <= $2")
	assert.Len(t, args, 2)
}
