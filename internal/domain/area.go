package domain

import "math"

// Area estimation methods, ordered from most to least trusted.
const (
	AreaMethodManual    = "MANUAL"
	AreaMethodEXIF      = "EXIF"
	AreaMethodHybrid    = "HYBRID"
	AreaMethodGPSSpread = "GPS_SPREAD"
	AreaMethodEstimated = "ESTIMATED"
)

const (
	// Assumed camera field of view when EXIF does not say otherwise.
	defaultCameraFOVDegrees = 60.0

	// Fallback ground coverage per photo when no altitude is available.
	defaultImageCoverageM2 = 1500.0

	// areaVarianceFactor widens the damaged-area band to absorb estimation
	// error in both the area and the damage percentage.
	areaVarianceFactor = 0.15

	acreM2 = 4046.8564224

	// Coordinate spread below this is GPS noise, not field extent.
	minSpreadKMForArea = 0.05
)

// Range is a min/mean/max band.
type Range struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// AreaEstimate is the assessed field and damaged area for one claim.
type AreaEstimate struct {
	TotalM2      float64 `json:"total_m2"`
	Method       string  `json:"method"`
	EXIFImages   int     `json:"exif_images"`
	DamagedM2    Range   `json:"damaged_m2"`
	DamagedAcres Range   `json:"damaged_acres"`
}

// coverageForImage returns the ground area one photo covers. With GPS
// altitude the footprint follows from the camera field of view: ground
// width is 2*alt*tan(fov/2), ground height follows the pixel aspect ratio
// when dimensions are present and is square otherwise. Without altitude a
// flat default applies.
func coverageForImage(img ImageEvidence) (coverageM2 float64, fromEXIF bool) {
	if img.AltitudeM == nil || *img.AltitudeM <= 0 {
		return defaultImageCoverageM2, false
	}
	fovRad := defaultCameraFOVDegrees * math.Pi / 180
	groundWidth := 2 * *img.AltitudeM * math.Tan(fovRad/2)
	groundHeight := groundWidth
	if img.WidthPx > 0 && img.HeightPx > 0 {
		groundHeight = groundWidth / (float64(img.WidthPx) / float64(img.HeightPx))
	}
	return groundWidth * groundHeight, true
}

// AssessArea estimates the total field area and the damaged-area band for a
// claim. Sources in priority order: a declared area from the policy, photo
// footprints from EXIF altitude, the GPS coordinate spread, and finally a
// flat per-image default. The damaged band applies the consensus damage
// percentages to the total, widened by the variance factor.
func AssessArea(images []ImageEvidence, declaredAreaM2 *float64, spreadKM float64, consensus DamageConsensus) AreaEstimate {
	total, method, exifImages := estimateFieldArea(images, declaredAreaM2, spreadKM, consensus)

	low := total * (consensus.MinPct / 100) * (1 - areaVarianceFactor)
	mean := total * consensus.MeanPct / 100
	high := total * (consensus.MaxPct / 100) * (1 + areaVarianceFactor)

	return AreaEstimate{
		TotalM2:    total,
		Method:     method,
		EXIFImages: exifImages,
		DamagedM2:  Range{Min: low, Mean: mean, Max: high},
		DamagedAcres: Range{
			Min:  low / acreM2,
			Mean: mean / acreM2,
			Max:  high / acreM2,
		},
	}
}

func estimateFieldArea(images []ImageEvidence, declaredAreaM2 *float64, spreadKM float64, consensus DamageConsensus) (totalM2 float64, method string, exifImages int) {
	if declaredAreaM2 != nil && *declaredAreaM2 > 0 {
		return *declaredAreaM2, AreaMethodManual, 0
	}

	var sum float64
	for _, img := range images {
		coverage, fromEXIF := coverageForImage(img)
		if fromEXIF {
			exifImages++
		}
		sum += coverage
	}

	if exifImages > 0 {
		// Discount for overlapping shots of the same ground.
		factor := 1.0
		if consensus.TotalImages > 0 && consensus.EffectiveImages > 0 {
			factor = float64(consensus.EffectiveImages) / float64(consensus.TotalImages)
		}
		method = AreaMethodHybrid
		if exifImages == len(images) {
			method = AreaMethodEXIF
		}
		return sum * factor, method, exifImages
	}

	if spreadKM > minSpreadKMForArea {
		spreadM := spreadKM * 1000
		return spreadM * spreadM / 2, AreaMethodGPSSpread, 0
	}

	n := consensus.EffectiveImages
	if n < 1 {
		n = 1
	}
	return float64(n) * defaultImageCoverageM2, AreaMethodEstimated, 0
}
