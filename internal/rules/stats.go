package rules

import "math"

// mean returns the arithmetic mean of vs, or 0 for an empty slice.
func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// stdDev returns the population standard deviation of vs.
func stdDev(vs []float64, avg float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range vs {
		d := v - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vs)))
}

// maxOf returns the maximum value in vs, or 0 for an empty slice.
func maxOf(vs []float64) float64 {
	var m float64
	for i, v := range vs {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}
