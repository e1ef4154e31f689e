package clock

// nearestDivisor returns the divisor of n closest to d. It scans upward from
// d (bounded by n) to find the closest divisor at or above, then downward for
// a strictly closer one, so ties go to the higher divisor. If d already
// divides n it is returned as-is.
func nearestDivisor(n, d int) int {
	high := n
	for i := d; i <= n; i++ {
		if n%i == 0 {
			high = i
			break
		}
	}

	best := high
	for i := d - 1; i >= 1 && d-i < high-d; i-- {
		if n%i == 0 {
			best = i
			break
		}
	}

	return best
}
