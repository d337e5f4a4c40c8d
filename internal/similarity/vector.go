package similarity

import (
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of two vectors. Zero vectors yield 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// clampedCosine maps cosine similarity into [0,1]; NaN becomes 0.
func clampedCosine(a, b []float32) (float64, error) {
	c, err := Cosine(a, b)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(c) || c < 0 {
		return 0, nil
	}
	if c > 1 {
		return 1, nil
	}
	return c, nil
}

func weightedAverage(a, b []float32, wa, wb float64) ([]float32, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = float32(wa*float64(a[i]) + wb*float64(b[i]))
	}
	return out, nil
}
