package ranking

// minMaxNormalize rescales values into [0,1] over the candidate set. A
// degenerate dimension (all values equal, including the all-zero case)
// normalizes to all zeros so it contributes nothing to the blended score
// instead of a constant offset.
func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(values))
	if max == min {
		return out
	}

	span := max - min
	for i, v := range values {
		out[i] = (v - min) / span
	}

	return out
}
