package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kamusis/novagen/internal/embeddings"
)

var (
	// ErrVectorLengthMismatch indicates two vectors have different dimensions.
	ErrVectorLengthMismatch = errors.New("vector length mismatch")
	// ErrModelMismatch indicates the query provider differs from the index model.
	ErrModelMismatch = errors.New("embedding model does not match index")
)

// Cosine computes cosine similarity between two vectors of equal length.
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrVectorLengthMismatch
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, nil
	}
	return dot / den, nil
}

// NormalizeL2 returns a new vector normalized to unit L2 norm.
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	n := math.Sqrt(sum)
	if n == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1.0 / n)
	for i := range v {
		out[i] = v[i] * inv
	}
	return out
}

// vector returns row i of the index.
func (idx *Index) vector(i int) []float32 {
	d := idx.Manifest.Dim
	return idx.Vectors[i*d : (i+1)*d]
}

// Suggest embeds query with prov and returns the k entries most similar to it,
// best first. Ties keep index order.
func (idx *Index) Suggest(ctx context.Context, prov embeddings.Provider, query string, k int) ([]Suggestion, error) {
	if prov.ModelID() != idx.Manifest.ModelID {
		return nil, fmt.Errorf("%w: provider %s, index %s", ErrModelMismatch, prov.ModelID(), idx.Manifest.ModelID)
	}
	if strings.TrimSpace(query) == "" || k <= 0 {
		return []Suggestion{}, nil
	}
	q, err := prov.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if idx.Manifest.Normalize {
		q = NormalizeL2(q)
	}

	out := make([]Suggestion, 0, len(idx.Entries))
	for i, e := range idx.Entries {
		score, err := Cosine(q, idx.vector(i))
		if err != nil {
			return nil, fmt.Errorf("cannot score %s: %w", e.Name, err)
		}
		out = append(out, Suggestion{
			Name:        e.Name,
			Score:       score,
			Description: e.Description,
			Category:    e.Category,
			Tags:        e.Tags,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
