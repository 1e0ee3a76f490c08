package similarity

import (
	"math"
	"sort"
)

// Cosine returns the cosine similarity of a and b.
// It returns 0 if the vectors differ in length, are empty, or either has
// zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return 0
	}
	return score
}

// Candidate is a vector to rank against a query.
type Candidate struct {
	ID     string
	Vector []float32
}

// Ranked is a candidate's similarity to the query.
type Ranked struct {
	ID    string
	Score float64
}

// Rank scores every candidate against query and returns them by score
// descending. Equal scores keep their input order.
func Rank(query []float32, candidates []Candidate) []Ranked {
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		ranked[i] = Ranked{ID: c.ID, Score: Cosine(query, c.Vector)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
