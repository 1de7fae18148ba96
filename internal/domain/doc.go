// Package domain models crop-insurance claim evidence and scores it into a
// claim decision.
//
// # Evidence Source
//
// Claim bundles originate from the mobile claims app. The upstream media
// service extracts EXIF metadata (GPS fix, capture timestamp, software tag,
// altitude, pixel dimensions) from each submitted photo and runs the damage
// classifier; this service only consumes the extracted metadata and never
// touches image bytes.
//
// # Evidence Conventions
//
// Damage codes (closed set, versioned with the classifier):
//
//	DR = Drought | G = Good/Healthy | ND = Nutrient Deficiency
//	WD = Weed Damage | other = Other Damage (also the neutral rule fallback)
//
// EXIF capture timestamps:
//
//	"YYYY:MM:DD HH:MM:SS" colon-separated date, e.g. "2026:07:14 06:42:10".
//	Buggy firmware pads the tag with NUL bytes; these are stripped before
//	parsing. A tag that still fails to parse counts as missing, never as an
//	error.
//
// Weather conditions:
//
//	OpenWeatherMap condition groups ("Clear", "Rain", "Thunderstorm", ...).
//	The correlation table in rules.yaml maps each damage code to the groups
//	that support or contradict it; "Extreme" is a legacy group kept for
//	archived observations.
//
// # Status Model
//
// Every scorer reports a [Status] alongside its score. PASS/WARNING/FAIL
// belong to location checks, MATCH/NEUTRAL/MISMATCH to weather correlation,
// UNKNOWN to checks with nothing usable to work with. Within one scoring
// call a status only ever worsens; a penalty is never followed by a silent
// upgrade.
//
// # Scoring Bands
//
// All scores are confidences in [0,1], higher meaning more trustworthy
// evidence (fraud risk is the one inverse exception). The decision engine
// bands the fused confidence with inclusive lower bounds:
//
//	≥0.70 APPROVE | ≥0.30 MANUAL_REVIEW | otherwise REJECT
//
// Severity buckets the damage percentage independently: >60% critical,
// >35% severe, >15% moderate, otherwise minimal.
package domain
