// Package curate scores and selects bundle artifacts for prompt assembly.
// Selection is deterministic for a given bundle so re-analysis reproduces the
// same curated set.
package curate

import (
	"strings"

	"swellforecaster/swell"
)

// Buoys whose readings anchor the forecast. Always kept.
var criticalBuoys = map[string]bool{
	"51001": true,
	"51002": true,
	"51004": true,
	"51101": true,
}

// Filename substrings for charts that must survive curation regardless of the
// budget: the OPC Pacific surface analyses, the north Pacific fax analysis,
// and the SWAN nearshore shore views.
var criticalPatterns = []string{
	"opc_p_sfc_full",
	"opc_p_w_sfc",
	"opc_p_e_sfc",
	"npac_surface_analysis",
	"swan_north_shore",
	"swan_south_shore",
}

// Filename substrings that score a fixed value regardless of source.
var filenameScores = []struct {
	substr string
	score  int
}{
	{"swan_north_shore", 10},
	{"swan_south_shore", 10},
	{"swan_direction", 9},
	{"swan_period", 9},
	{"ww3", 7},
	{"gfswave", 7},
	{"wave", 7},
	{"streamline", 6},
	{"wind", 5},
}

// Artifacts matching these patterns never make the cut: wrong ocean, wrong
// coast, or too noisy to help. The WW3 detail gifs duplicate what the overview
// and the PacIOOS regional chart already show.
var lowValuePatterns = []string{
	"atlantic",
	"caribbean",
	"east_coast",
	"meteogram",
	"water_temp",
	"ww3_hawaii_detail",
	"ww3_north_pacific_detail",
	"ww3_south_pacific_detail",
	"local_wind",
}

// Score assigns the selection score for an artifact. Higher is better; zero
// means excluded.
func Score(a swell.Artifact) int {
	name := strings.ToLower(a.Filename)

	for _, p := range lowValuePatterns {
		if strings.Contains(name, p) {
			return 0
		}
	}
	if a.Placeholder {
		return 1
	}
	if a.Buoy != "" && criticalBuoys[a.Buoy] {
		return 10
	}

	// OPC and fax forecast charts decay with horizon; the analyses land on
	// the default and are protected by Critical instead.
	if strings.Contains(name, "opc_p_") || strings.HasPrefix(name, "npac_") ||
		strings.Contains(name, "wind_wave") {
		switch {
		case strings.Contains(name, "24h"):
			return 8
		case strings.Contains(name, "48h"):
			return 7
		case strings.Contains(name, "72h"):
			return 6
		default:
			return 5
		}
	}

	for _, fs := range filenameScores {
		if strings.Contains(name, fs.substr) {
			return fs.score
		}
	}
	if a.Type == "buoy" {
		return 7
	}
	if a.Type == "api" {
		return 6
	}
	return 3
}

// Critical reports whether an artifact must be kept regardless of the budget:
// key buoy readings, surface analyses, and the SWAN nearshore charts.
func Critical(a swell.Artifact) bool {
	if a.Buoy != "" && criticalBuoys[a.Buoy] {
		return true
	}
	name := strings.ToLower(a.Filename)
	for _, p := range criticalPatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}
