package diamond

// fingerprintAxes is the number of sampled axes packed into the
// fingerprint word.
const fingerprintAxes = 64

// fingerprint packs the signs of up to 64 evenly strided axes of the
// center into one word. Centers that agree on the sampled signs share a
// bucket, which makes the fingerprint usable for coarse grouping before
// any exact distance work.
func fingerprint(center []int8) uint64 {
	n := fingerprintAxes
	if len(center) < n {
		n = len(center)
	}
	if n == 0 {
		return 0
	}

	stride := len(center) / n

	var fp uint64
	for s := 0; s < n; s++ {
		if center[s*stride] > 0 {
			fp |= 1 << uint(s)
		}
	}
	return fp
}
