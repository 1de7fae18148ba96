package domain

import (
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

// Spread thresholds for a single field's photo cluster. A smallholder plot
// rarely spans more than a couple of kilometers end to end.
const (
	spreadWarnKM = 2.0
	spreadFailKM = 5.0
)

// Penalties applied to the running location score.
const (
	spreadFailPenalty   = 0.6
	spreadWarnPenalty   = 0.3
	outlierPenalty      = 0.1
	userDistancePenalty = 0.3
)

// The outlier pass is skipped when the mean distance to the centroid is
// below this guard, so ordinary GPS jitter in a tight cluster is never
// flagged.
const (
	outlierGuardM = 10.0
	outlierFactor = 3.0
)

// userToleranceM is the accepted gap between the evidence centroid and the
// claimant's asserted position; the cross-check penalizes at five times it.
const userToleranceM = 100.0

// VerifyLocationConsistency judges whether the evidence coordinates
// plausibly describe one physical parcel. Non-finite or out-of-range points
// are dropped before scoring; an empty set is inconclusive, not fraudulent.
// When userLocation is present the evidence centroid is cross-checked
// against it.
//
// The returned score starts at 1.0 and only ever decreases, and the status
// only ever worsens. Metrics carry spread_km, avg_spread_km, outlier_count
// and, when the cross-check ran, dist_to_user_m.
func VerifyLocationConsistency(points []EvidencePoint, userLocation *LatLon) VerificationResult {
	valid := make([]EvidencePoint, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return VerificationResult{
			Status:  StatusWarning,
			Score:   0.5,
			Details: []string{"no usable location evidence"},
		}
	}

	center := centroid(valid)

	distances := make([]float64, len(valid))
	var maxDist, sumDist float64
	for i, p := range valid {
		d := haversineKM(center.Lat, center.Lon, p.Lat, p.Lon)
		distances[i] = d
		sumDist += d
		if d > maxDist {
			maxDist = d
		}
	}
	avgDist := sumDist / float64(len(valid))

	score := 1.0
	status := StatusPass
	var details []string

	switch {
	case maxDist > spreadFailKM:
		status = worseOf(status, StatusFail)
		score -= spreadFailPenalty
		details = append(details, fmt.Sprintf("extreme coordinate spread: %.2fkm (limit %.1fkm)", maxDist, spreadFailKM))
	case maxDist > spreadWarnKM:
		status = worseOf(status, StatusWarning)
		score -= spreadWarnPenalty
		details = append(details, fmt.Sprintf("wide coordinate spread: %.2fkm", maxDist))
	default:
		details = append(details, fmt.Sprintf("coordinates clustered within %.2fkm", maxDist))
	}

	outliers := 0
	if avgDist*1000 >= outlierGuardM {
		for _, d := range distances {
			if d > outlierFactor*avgDist {
				outliers++
			}
		}
	}
	if outliers > 0 {
		score -= float64(outliers) * outlierPenalty
		details = append(details, fmt.Sprintf("%d location(s) far outside the cluster average", outliers))
	}

	metrics := map[string]float64{
		"spread_km":     maxDist,
		"avg_spread_km": avgDist,
		"outlier_count": float64(outliers),
	}

	if userLocation != nil {
		if userLocation.Valid() {
			distM := haversineKM(center.Lat, center.Lon, userLocation.Lat, userLocation.Lon) * 1000
			metrics["dist_to_user_m"] = distM
			if distM > 5*userToleranceM {
				score -= userDistancePenalty
				if status == StatusPass {
					status = StatusWarning
				}
				details = append(details, fmt.Sprintf("evidence centroid is %.0fm from the claimant's position", distM))
			} else {
				details = append(details, "evidence centroid matches the claimant's position")
			}
		} else {
			details = append(details, "claimant position unusable, cross-check skipped")
		}
	}

	return VerificationResult{
		Status:  status,
		Score:   clamp01(score),
		Details: details,
		Metrics: metrics,
		Center:  &center,
	}
}

// centroid returns the arithmetic mean of the coordinates. Evidence for a
// single field spans well under a degree, so spherical averaging buys
// nothing.
func centroid(points []EvidencePoint) LatLon {
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return LatLon{Lat: lat / n, Lon: lon / n}
}

// haversineKM returns the great-circle distance between two points in
// kilometers.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const deg2rad = math.Pi / 180
	rlat1 := lat1 * deg2rad
	rlat2 := lat2 * deg2rad
	dlat := (lat2 - lat1) * deg2rad
	dlon := (lon2 - lon1) * deg2rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
