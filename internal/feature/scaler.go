package feature

import "math"

// Standardize z-scores every column of the feature matrix: (value − mean) /
// std, computed per dimension over the whole run. Columns with zero standard
// deviation are centered and left at zero instead of dividing by zero. The
// input is not modified; the same input always yields the same output.
func Standardize(matrix [][]float64) [][]float64 {
	if len(matrix) == 0 {
		return nil
	}
	dims := len(matrix[0])
	n := float64(len(matrix))

	means := make([]float64, dims)
	for _, row := range matrix {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}

	stds := make([]float64, dims)
	for _, row := range matrix {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
	}

	scaled := make([][]float64, len(matrix))
	for i, row := range matrix {
		out := make([]float64, dims)
		for j, v := range row {
			if stds[j] > 0 {
				out[j] = (v - means[j]) / stds[j]
			}
		}
		scaled[i] = out
	}
	return scaled
}
