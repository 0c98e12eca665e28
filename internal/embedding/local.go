package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultLocalDimension matches the sentence dimension of the
// all-MiniLM-L6-v2 model the fallback stands in for.
const DefaultLocalDimension = 384

// LocalEmbedder is the offline fallback. It hashes unigram and bigram
// features into a fixed-dimension vector and L2-normalises the result,
// so it needs no network, no corpus preparation and no model files, and
// identical text always maps to the identical vector.
type LocalEmbedder struct {
	model     string
	dimension int
}

// NewLocalEmbedder creates a new LocalEmbedder instance
func NewLocalEmbedder(model string, dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = DefaultLocalDimension
	}
	if model == "" {
		model = "all-MiniLM-L6-v2"
	}
	return &LocalEmbedder{model: model, dimension: dimension}
}

// Name returns the embedder variant identifier.
func (e *LocalEmbedder) Name() string { return "local" }

// Dimension returns the dimensionality of the produced vectors.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

// Embed produces one vector per text, in order. Empty text yields a
// zero vector.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *LocalEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec
	}

	for i, tok := range tokens {
		addFeature(vec, tok)
		if i+1 < len(tokens) {
			addFeature(vec, tok+" "+tokens[i+1])
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

// addFeature buckets the feature by hash; one hash bit picks the sign
// so opposing features cancel rather than pile up.
func addFeature(vec []float32, feature string) {
	h := fnv.New32a()
	h.Write([]byte(feature))
	sum := h.Sum32()

	idx := int(sum % uint32(len(vec)))
	if sum&0x80000000 != 0 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
