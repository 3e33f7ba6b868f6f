package discovery

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// embeddingDims is the dimensionality of the hashed embedding space.
// Large enough to keep hash collisions rare for tool-sized documents,
// small enough to keep scoring cheap.
const embeddingDims = 512

// tokenize lowercases the text and splits it on any non-alphanumeric rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// features emits the hashable features of a token: the token itself plus its
// character trigrams. Trigrams let morphological variants overlap
// ("calculation" shares most of its trigrams with "calculator"), which is
// what makes the similarity semantic rather than exact-match.
func features(token string) []string {
	feats := []string{token}
	if len(token) < 3 {
		return feats
	}
	for i := 0; i+3 <= len(token); i++ {
		feats = append(feats, token[i:i+3])
	}
	return feats
}

// embed maps text to a term-frequency vector in a fixed hashed feature
// space, L2-normalized. The embedding is fully deterministic: the same text
// always produces the same vector.
func embed(text string) []float32 {
	vec := make([]float32, embeddingDims)
	for _, token := range tokenize(text) {
		for _, feat := range features(token) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(feat))
			vec[h.Sum32()%embeddingDims]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// cosine returns the cosine similarity of two embeddings, clamped to [0,1].
// Vectors produced by embed are already unit length (or zero), so the dot
// product is the cosine.
func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}
