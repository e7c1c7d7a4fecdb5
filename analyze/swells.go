package analyze

import (
	"fmt"

	"swellforecaster/curate"
	"swellforecaster/ndbc"
)

// South swell window in degrees true, centered on SSW through SW arrivals at
// buoy 51002.
const (
	southSwellMinDir = 160.0
	southSwellMaxDir = 220.0
	southSwellMinHt  = 0.5 // meters
	southSwellMinPer = 12.0
)

// SouthSwellDetails inspects the curated buoy 51002 reading for a significant
// long-period swell out of the south. Returns "" when none is present.
func SouthSwellDetails(sel *curate.Selection) string {
	for _, it := range sel.Buoys {
		if it.Artifact.Buoy != "51002" {
			continue
		}
		latest, err := ndbc.Latest(string(it.Content))
		if err != nil {
			return ""
		}
		if latest.WaveHeight == nil || latest.DominantPer == nil || latest.MeanWaveDir == nil {
			return ""
		}
		dir := *latest.MeanWaveDir
		if dir < southSwellMinDir || dir > southSwellMaxDir {
			return ""
		}
		if *latest.WaveHeight < southSwellMinHt || *latest.DominantPer < southSwellMinPer {
			return ""
		}
		ft := *latest.WaveHeight * 3.28084
		return fmt.Sprintf("%.1f ft at %.0f seconds from %.0f degrees (%s)",
			ft, *latest.DominantPer, dir, compass(dir))
	}
	return ""
}

func compass(deg float64) string {
	dirs := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	idx := int((deg+11.25)/22.5) % 16
	return dirs[idx]
}
