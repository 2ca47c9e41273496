package image

import "math"

// DefaultGamma brightens shadows while leaving highlights in place.
const DefaultGamma = 0.7

// ApplyGamma maps every sample v to round(255 * (v/255)^gamma). It runs
// once, before dithering.
func ApplyGamma(s *Samples, gamma float64) {
	if gamma == 1 {
		return
	}
	for i, v := range s.Pix {
		s.Pix[i] = gammaCorrect(v, gamma)
	}
}

func gammaCorrect(v, gamma float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return math.Floor(255*math.Pow(v/255, gamma) + 0.5)
}
