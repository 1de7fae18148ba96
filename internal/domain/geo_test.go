package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test field near Nagpur, Maharashtra. At this latitude 0.001 degrees of
// latitude is roughly 111 meters.
const (
	testFieldLat = 21.1458
	testFieldLon = 79.0882
)

// latCluster builds n points stepped north by spacingDeg each.
func latCluster(n int, spacingDeg float64) []EvidencePoint {
	points := make([]EvidencePoint, n)
	for i := range points {
		points[i] = EvidencePoint{
			Lat:    testFieldLat + float64(i)*spacingDeg,
			Lon:    testFieldLon,
			Source: SourceImage,
		}
	}
	return points
}

func TestVerifyLocationConsistency(t *testing.T) {
	t.Run("tight cluster passes", func(t *testing.T) {
		// Four points spanning roughly a kilometer.
		points := latCluster(4, 0.003)

		result := VerifyLocationConsistency(points, nil)

		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, 1.0, result.Score)
		require.NotEmpty(t, result.Details)
		assert.Contains(t, result.Details[0], "clustered")
		assert.Less(t, result.Metrics["spread_km"], spreadWarnKM)
		require.NotNil(t, result.Center)
		assert.InDelta(t, testFieldLat+0.0045, result.Center.Lat, 1e-9)
	})

	t.Run("distant point fails", func(t *testing.T) {
		// Four clustered points plus one roughly 8km north.
		points := append(latCluster(4, 0.003), EvidencePoint{Lat: testFieldLat + 0.072, Lon: testFieldLon})

		result := VerifyLocationConsistency(points, nil)

		assert.Equal(t, StatusFail, result.Status)
		assert.LessOrEqual(t, result.Score, 0.4)
		assert.Greater(t, result.Metrics["spread_km"], spreadFailKM)
	})

	t.Run("moderate spread warns", func(t *testing.T) {
		// Two points 5km apart sit 2.5km either side of the centroid.
		points := []EvidencePoint{
			{Lat: testFieldLat, Lon: testFieldLon},
			{Lat: testFieldLat + 0.045, Lon: testFieldLon},
		}

		result := VerifyLocationConsistency(points, nil)

		assert.Equal(t, StatusWarning, result.Status)
		assert.InDelta(t, 0.7, result.Score, 1e-9)
		require.NotEmpty(t, result.Details)
		assert.Contains(t, result.Details[0], "wide coordinate spread")
	})

	t.Run("empty input is inconclusive", func(t *testing.T) {
		result := VerifyLocationConsistency(nil, nil)

		assert.Equal(t, StatusWarning, result.Status)
		assert.Equal(t, 0.5, result.Score)
		assert.Equal(t, []string{"no usable location evidence"}, result.Details)
		assert.Nil(t, result.Center)
	})

	t.Run("invalid points dropped before scoring", func(t *testing.T) {
		points := []EvidencePoint{
			{Lat: math.NaN(), Lon: testFieldLon},
			{Lat: testFieldLat, Lon: 200},
			{Lat: math.Inf(1), Lon: testFieldLon},
			{Lat: testFieldLat, Lon: testFieldLon},
		}

		result := VerifyLocationConsistency(points, nil)

		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, 1.0, result.Score)
		assert.Equal(t, 0.0, result.Metrics["spread_km"])
	})

	t.Run("all invalid is inconclusive", func(t *testing.T) {
		points := []EvidencePoint{
			{Lat: 91, Lon: testFieldLon},
			{Lat: testFieldLat, Lon: -181},
		}

		result := VerifyLocationConsistency(points, nil)

		assert.Equal(t, StatusWarning, result.Status)
		assert.Equal(t, 0.5, result.Score)
	})

	t.Run("gps jitter not flagged as outliers", func(t *testing.T) {
		// Five points within about 10m of each other.
		points := latCluster(5, 0.00002)

		result := VerifyLocationConsistency(points, nil)

		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, 1.0, result.Score)
		assert.Equal(t, 0.0, result.Metrics["outlier_count"])
	})

	t.Run("single outlier flagged inside warn spread", func(t *testing.T) {
		// Six points together and one 1.8km away: inside the warn band but
		// far beyond three times the average distance.
		points := latCluster(6, 0)
		points = append(points, EvidencePoint{Lat: testFieldLat + 0.0162, Lon: testFieldLon})

		result := VerifyLocationConsistency(points, nil)

		assert.Equal(t, StatusPass, result.Status)
		assert.InDelta(t, 0.9, result.Score, 1e-9)
		assert.Equal(t, 1.0, result.Metrics["outlier_count"])
		assert.Contains(t, result.Details[1], "far outside the cluster average")
	})

	t.Run("user location nearby is positive", func(t *testing.T) {
		points := latCluster(3, 0.0001)
		user := &LatLon{Lat: testFieldLat + 0.0001, Lon: testFieldLon}

		result := VerifyLocationConsistency(points, user)

		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, 1.0, result.Score)
		assert.Less(t, result.Metrics["dist_to_user_m"], 5*userToleranceM)
		assert.Contains(t, result.Details[1], "matches the claimant's position")
	})

	t.Run("user location far away downgrades", func(t *testing.T) {
		points := latCluster(3, 0.0001)
		user := &LatLon{Lat: testFieldLat + 0.018, Lon: testFieldLon}

		result := VerifyLocationConsistency(points, user)

		assert.Equal(t, StatusWarning, result.Status)
		assert.InDelta(t, 0.7, result.Score, 1e-9)
		assert.Greater(t, result.Metrics["dist_to_user_m"], 5*userToleranceM)
	})

	t.Run("user mismatch never upgrades a fail", func(t *testing.T) {
		points := append(latCluster(4, 0.003), EvidencePoint{Lat: testFieldLat + 0.072, Lon: testFieldLon})
		user := &LatLon{Lat: testFieldLat + 1, Lon: testFieldLon}

		result := VerifyLocationConsistency(points, user)

		assert.Equal(t, StatusFail, result.Status)
		assert.InDelta(t, 0.1, result.Score, 1e-9)
	})

	t.Run("invalid user location skipped", func(t *testing.T) {
		points := latCluster(3, 0.0001)
		user := &LatLon{Lat: math.NaN(), Lon: testFieldLon}

		result := VerifyLocationConsistency(points, user)

		assert.Equal(t, 1.0, result.Score)
		assert.NotContains(t, result.Metrics, "dist_to_user_m")
		assert.Contains(t, result.Details[1], "cross-check skipped")
	})

	t.Run("score never goes negative", func(t *testing.T) {
		// Extreme spread plus an outlier plus a distant claimant.
		points := latCluster(12, 0)
		points = append(points, EvidencePoint{Lat: testFieldLat + 0.27, Lon: testFieldLon})
		user := &LatLon{Lat: testFieldLat + 2, Lon: testFieldLon}

		result := VerifyLocationConsistency(points, user)

		assert.Equal(t, StatusFail, result.Status)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.InDelta(t, 0.0, result.Score, 1e-9)
	})
}

func TestHaversineKM(t *testing.T) {
	t.Run("zero distance", func(t *testing.T) {
		assert.Equal(t, 0.0, haversineKM(testFieldLat, testFieldLon, testFieldLat, testFieldLon))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := haversineKM(0, 0, 1, 0)
		assert.InDelta(t, 111.19, d, 0.01)
	})

	t.Run("nagpur to mumbai", func(t *testing.T) {
		d := haversineKM(21.1458, 79.0882, 19.0760, 72.8777)
		assert.InDelta(t, 688, d, 2)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := haversineKM(21.1458, 79.0882, 19.0760, 72.8777)
		b := haversineKM(19.0760, 72.8777, 21.1458, 79.0882)
		assert.Equal(t, a, b)
	})
}

func TestCentroid(t *testing.T) {
	points := []EvidencePoint{
		{Lat: 10, Lon: 20},
		{Lat: 20, Lon: 40},
		{Lat: 30, Lon: 60},
	}

	center := centroid(points)

	assert.InDelta(t, 20, center.Lat, 1e-9)
	assert.InDelta(t, 40, center.Lon, 1e-9)
}
