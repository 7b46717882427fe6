package internal

// Acquisition-time coordinates are int64 nanoseconds since the Unix epoch,
// so the smallest step that keeps an axis strictly increasing is one
// nanosecond.
const timeIncrement = int64(1)

// ExistReversedTime reports whether the time axis is non-monotonic: true
// iff some element is less than or equal to its predecessor.
func ExistReversedTime(times []int64) bool {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return true
		}
	}
	return false
}

// CoerceIncreasingTime repairs a non-monotonic time axis in one
// left-to-right pass. A running offset, initially zero, is added to every
// element; whenever the offset value would not clear its corrected
// predecessor, the offset grows by exactly enough to land one increment
// above it, and that larger offset carries forward to all later elements.
//
// The input is never mutated. The result has the same length, is strictly
// increasing, and is identical in value to a strictly increasing input.
func CoerceIncreasingTime(times []int64) []int64 {
	corrected := make([]int64, len(times))
	if len(times) == 0 {
		return corrected
	}
	corrected[0] = times[0]
	var offset int64
	for i := 1; i < len(times); i++ {
		value := times[i] + offset
		if value <= corrected[i-1] {
			offset += corrected[i-1] - value + timeIncrement
			value = times[i] + offset
		}
		corrected[i] = value
	}
	return corrected
}
