package similarity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCosine tests cosine similarity on known vectors
func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expected: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, expected: -1},
		{name: "scaled", a: []float32{1, 1}, b: []float32{3, 3}, expected: 1},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, expected: 0},
		{name: "empty", a: []float32{}, b: []float32{}, expected: 0},
		{name: "nil", a: nil, b: nil, expected: 0},
		{name: "zero magnitude", a: []float32{0, 0}, b: []float32{1, 1}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

// TestCosine_Properties tests symmetry, bounds and self-similarity on random vectors
func TestCosine_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		dim := 1 + rng.Intn(64)
		a := randomVector(rng, dim)
		b := randomVector(rng, dim)

		ab := Cosine(a, b)
		assert.Equal(t, ab, Cosine(b, a), "symmetry")
		assert.GreaterOrEqual(t, ab, -1-1e-9)
		assert.LessOrEqual(t, ab, 1+1e-9)
		assert.False(t, math.IsNaN(ab))

		if nonZero(a) {
			assert.InDelta(t, 1, Cosine(a, a), 1e-6)
		}
	}
}

// TestRank_OrdersDescending tests ranking order
func TestRank_OrdersDescending(t *testing.T) {
	query := []float32{1, 0}
	ranked := Rank(query, []Candidate{
		{ID: "far", Vector: []float32{0, 1}},
		{ID: "near", Vector: []float32{1, 0.1}},
		{ID: "mid", Vector: []float32{1, 1}},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "near", ranked[0].ID)
	assert.Equal(t, "mid", ranked[1].ID)
	assert.Equal(t, "far", ranked[2].ID)
}

// TestRank_StableTies tests that equal scores keep input order
func TestRank_StableTies(t *testing.T) {
	query := []float32{1, 1}
	ranked := Rank(query, []Candidate{
		{ID: "a", Vector: []float32{2, 2}},
		{ID: "b", Vector: []float32{1, 1}},
		{ID: "c", Vector: []float32{5, 5}},
	})

	ids := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

// TestRank_Empty tests ranking with no candidates
func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank([]float32{1}, nil))
}

func randomVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}

func nonZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}
