package domain

// FusionVersionV1 identifies the current signal-weight set. Any weight
// change ships under a new version string so stored assessments stay
// interpretable.
const FusionVersionV1 = "fusion/v1"

// FusionWeights combines the independent evidence signals into the single
// confidence score the decision engine consumes. Weights sum to 1.
type FusionWeights struct {
	Version   string  `json:"version"`
	Geo       float64 `json:"geo"`
	Weather   float64 `json:"weather"`
	Detection float64 `json:"detection"`
	Integrity float64 `json:"integrity"`
}

// FusionV1 returns the production weight set: location and weather evidence
// carry most of the signal, upstream detection confidence and claim
// integrity (inverted fraud risk) the remainder.
func FusionV1() FusionWeights {
	return FusionWeights{
		Version:   FusionVersionV1,
		Geo:       0.35,
		Weather:   0.35,
		Detection: 0.20,
		Integrity: 0.10,
	}
}

// Combine fuses the four signals into one confidence score plus a breakdown
// of the clamped inputs and the fused value. Inputs are clamped into [0,1],
// so the weighted sum is too.
func (w FusionWeights) Combine(geoScore, weatherScore, detectionScore, integrityScore float64) (float64, map[string]float64) {
	geo := clamp01(geoScore)
	weather := clamp01(weatherScore)
	detection := clamp01(detectionScore)
	integrity := clamp01(integrityScore)

	fused := clamp01(geo*w.Geo + weather*w.Weather + detection*w.Detection + integrity*w.Integrity)

	return fused, map[string]float64{
		"geo":       geo,
		"weather":   weather,
		"detection": detection,
		"integrity": integrity,
		"fused":     fused,
	}
}
