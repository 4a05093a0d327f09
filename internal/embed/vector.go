package embed

import "math"

const normEpsilon = 1e-9

// Dot returns the dot product of two vectors. For L2-normalized inputs this
// equals their cosine similarity. Mismatched lengths compare the shared
// prefix, which only happens when strategies were mixed by mistake.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine returns the cosine similarity of two vectors of any magnitude.
func Cosine(a, b []float64) float64 {
	return Dot(a, b) / (Norm(a)*Norm(b) + normEpsilon)
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// NormalizeRow scales v to unit length in place and returns it.
func NormalizeRow(v []float64) []float64 {
	n := Norm(v) + normEpsilon
	for i := range v {
		v[i] /= n
	}
	return v
}

// NormalizeRows unit-scales every row in place and returns the matrix.
func NormalizeRows(m [][]float64) [][]float64 {
	for _, row := range m {
		NormalizeRow(row)
	}
	return m
}
