// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a sample in [-1,1] to 16-bit PCM.
// Values outside the range are clamped first.
func Float32ToInt16(x float32) int16 {
	x, _ = Clip(x)

	if x < 0 {
		return int16(x * 32768.0)
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Clip clamps x to [-1,1] and reports whether it had to.
func Clip(x float32) (float32, bool) {
	if x > 1 {
		return 1, true
	} else if x < -1 {
		return -1, true
	}

	return x, false
}

// ClipBuffer clamps every sample of buf in place and reports whether any
// sample was out of range.
func ClipBuffer(buf []float32) bool {
	clipped := false
	for i, x := range buf {
		if x > 1 {
			buf[i] = 1
			clipped = true
		} else if x < -1 {
			buf[i] = -1
			clipped = true
		}
	}

	return clipped
}
