package learn

import (
	"fmt"
	"math"
)

const (
	gradientIterations = 2000
	learningRate       = 0.1
	l2Lambda           = 1.0
)

// model is a fitted binary logistic classifier over standardized features.
type model struct {
	coef      []float64
	intercept float64
}

// standardize scales each feature column to zero mean and unit variance.
// Zero-variance columns keep scale 1 so constant features contribute a zero
// coefficient instead of dividing by zero.
func standardize(x [][]float64) (scaled [][]float64, means, stds []float64) {
	n := len(x)
	dim := len(x[0])
	means = make([]float64, dim)
	stds = make([]float64, dim)

	for _, row := range x {
		for d, v := range row {
			means[d] += v
		}
	}
	for d := range means {
		means[d] /= float64(n)
	}
	for _, row := range x {
		for d, v := range row {
			diff := v - means[d]
			stds[d] += diff * diff
		}
	}
	for d := range stds {
		stds[d] = math.Sqrt(stds[d] / float64(n))
		if stds[d] == 0 {
			stds[d] = 1
		}
	}

	scaled = make([][]float64, n)
	for i, row := range x {
		scaled[i] = make([]float64, dim)
		for d, v := range row {
			scaled[i][d] = (v - means[d]) / stds[d]
		}
	}
	return scaled, means, stds
}

// balancedWeights returns per-class sample weights n/(2*count(class)),
// countering label imbalance.
func balancedWeights(y []int) ([2]float64, error) {
	var counts [2]int
	for _, label := range y {
		counts[label]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return [2]float64{}, fmt.Errorf("degenerate label distribution: %d negatives, %d positives", counts[0], counts[1])
	}
	n := float64(len(y))
	return [2]float64{
		n / (2 * float64(counts[0])),
		n / (2 * float64(counts[1])),
	}, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// fitLogistic fits an L2-regularized logistic regression with balanced
// class weights by full-batch gradient descent. Inputs are expected to be
// standardized; the run is fully deterministic.
func fitLogistic(x [][]float64, y []int) (model, error) {
	classWeights, err := balancedWeights(y)
	if err != nil {
		return model{}, err
	}

	n := len(x)
	dim := len(x[0])
	coef := make([]float64, dim)
	intercept := 0.0

	for iter := 0; iter < gradientIterations; iter++ {
		grad := make([]float64, dim)
		gradB := 0.0

		for i, row := range x {
			z := intercept
			for d, v := range row {
				z += coef[d] * v
			}
			residual := classWeights[y[i]] * (sigmoid(z) - float64(y[i]))
			for d, v := range row {
				grad[d] += residual * v
			}
			gradB += residual
		}

		// L2 penalty on coefficients only, not the intercept.
		for d := range grad {
			grad[d] = grad[d]/float64(n) + l2Lambda*coef[d]/float64(n)
		}
		gradB /= float64(n)

		for d := range coef {
			coef[d] -= learningRate * grad[d]
		}
		intercept -= learningRate * gradB
	}

	for _, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return model{}, fmt.Errorf("fit diverged")
		}
	}
	return model{coef: coef, intercept: intercept}, nil
}

func (m model) predict(row []float64) int {
	z := m.intercept
	for d, v := range row {
		z += m.coef[d] * v
	}
	if z >= 0 {
		return 1
	}
	return 0
}

// crossValAccuracy runs deterministic stratified k-fold cross validation
// and returns mean accuracy. Folds are assigned round-robin within each
// class so every fold sees both labels whenever possible.
func crossValAccuracy(x [][]float64, y []int, folds int) float64 {
	n := len(x)
	if folds < 2 {
		folds = 2
	}
	if folds > n {
		folds = n
	}

	foldOf := make([]int, n)
	next := [2]int{}
	for i, label := range y {
		foldOf[i] = next[label] % folds
		next[label]++
	}

	var total float64
	scored := 0
	for f := 0; f < folds; f++ {
		var trainX [][]float64
		var trainY []int
		var testX [][]float64
		var testY []int
		for i := range x {
			if foldOf[i] == f {
				testX = append(testX, x[i])
				testY = append(testY, y[i])
			} else {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}
		if len(testX) == 0 || len(trainX) == 0 {
			continue
		}

		m, err := fitLogistic(trainX, trainY)
		if err != nil {
			continue
		}
		correct := 0
		for i, row := range testX {
			if m.predict(row) == testY[i] {
				correct++
			}
		}
		total += float64(correct) / float64(len(testX))
		scored++
	}

	if scored == 0 {
		return 0
	}
	return total / float64(scored)
}
