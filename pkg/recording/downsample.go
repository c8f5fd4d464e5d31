package recording

// Downsample decimates samples to at most maxPoints for display, reusing dst
// when it has sufficient capacity. Returns the destination slice (dst if
// reused, a new slice otherwise). If len(samples) <= maxPoints all samples
// are copied through.
func Downsample(dst []Sample, samples []Sample, maxPoints int) []Sample {
	if len(samples) <= maxPoints {
		if cap(dst) >= len(samples) {
			dst = dst[:len(samples)]
			copy(dst, samples)
			return dst
		}
		result := make([]Sample, len(samples))
		copy(result, samples)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]Sample, 0, maxPoints)
	}

	step := float64(len(samples)) / float64(maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		if idx < len(samples) {
			dst = append(dst, samples[idx])
		}
	}
	return dst
}

// DownsampleForce decimates a force series to at most maxPoints, with the
// same destination-reuse contract as Downsample.
func DownsampleForce(dst []ForcePoint, series []ForcePoint, maxPoints int) []ForcePoint {
	if len(series) <= maxPoints {
		if cap(dst) >= len(series) {
			dst = dst[:len(series)]
			copy(dst, series)
			return dst
		}
		result := make([]ForcePoint, len(series))
		copy(result, series)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]ForcePoint, 0, maxPoints)
	}

	step := float64(len(series)) / float64(maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		if idx < len(series) {
			dst = append(dst, series[idx])
		}
	}
	return dst
}
