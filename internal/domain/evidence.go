package domain

import (
	"math"
	"time"
)

// LatLon is a WGS-84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite and in range.
func (l LatLon) Valid() bool {
	return validCoordinates(l.Lat, l.Lon)
}

// PointSource records where an evidence coordinate came from.
type PointSource string

const (
	SourceImage PointSource = "image"
	SourceUser  PointSource = "user"
)

// EvidencePoint is a single coordinate extracted from claim evidence,
// typically photo EXIF metadata. Points are immutable once extracted and
// discarded after the claim is scored.
type EvidencePoint struct {
	Lat    float64     `json:"lat"`
	Lon    float64     `json:"lon"`
	Source PointSource `json:"source,omitempty"`
}

// Valid reports whether the point carries finite, in-range coordinates.
func (p EvidencePoint) Valid() bool {
	return validCoordinates(p.Lat, p.Lon)
}

// DamageDetection is the upstream image-analysis verdict for one photo.
type DamageDetection struct {
	DamagePct  float64    `json:"damage_pct"`
	Code       DamageCode `json:"code"`
	Confidence float64    `json:"confidence"`
}

// ImageEvidence bundles the metadata upstream media processing extracts from
// one claim photo. Everything beyond Filename is optional; absent evidence
// degrades the relevant check instead of failing the claim.
//
// CapturedAt carries the raw EXIF DateTimeOriginal string, NULs and all,
// exactly as extracted. Parsing is deferred to the timestamp check so a
// corrupt tag counts as missing rather than poisoning the whole bundle.
type ImageEvidence struct {
	Filename   string           `json:"filename"`
	Point      *EvidencePoint   `json:"point,omitempty"`
	CapturedAt string           `json:"captured_at,omitempty"`
	Software   string           `json:"software,omitempty"`
	AltitudeM  *float64         `json:"altitude_m,omitempty"`
	WidthPx    int              `json:"width_px,omitempty"`
	HeightPx   int              `json:"height_px,omitempty"`
	Detection  *DamageDetection `json:"detection,omitempty"`
}

// WeatherSnapshot is one observation of current conditions at a location.
// Snapshots are immutable once produced; the resolver caches and replaces
// them wholesale, never mutates them in place.
type WeatherSnapshot struct {
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	Condition    string    `json:"condition"`
	Description  string    `json:"description,omitempty"`
	WindSpeedMS  float64   `json:"wind_speed_ms"`
	ObservedAt   time.Time `json:"observed_at"`
	IsMock       bool      `json:"is_mock"`
	Source       string    `json:"source,omitempty"`
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
