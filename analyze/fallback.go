package analyze

import (
	"fmt"
	"strings"
	"time"

	"swellforecaster/curate"
	"swellforecaster/ndbc"
)

// buoyReading is a parsed snapshot from one station, used to seed the
// rule-based forecast.
type buoyReading struct {
	station string
	north   bool
	south   bool
	obs     ndbc.Observation
}

// Fallback builds a rule-based forecast directly from buoy numbers when the
// LLM path is unavailable. It always returns a forecast, even when every
// source failed.
func Fallback(sel *curate.Selection, now time.Time) (string, error) {
	var readings []buoyReading
	for _, it := range sel.Buoys {
		if it.Artifact.Buoy == "" {
			continue
		}
		obs, err := ndbc.Latest(string(it.Content))
		if err != nil {
			continue
		}
		readings = append(readings, buoyReading{
			station: it.Artifact.Buoy,
			north:   it.Artifact.NorthFacing,
			south:   it.Artifact.SouthFacing,
			obs:     obs,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# O'ahu Surf Forecast - %s\n\n", now.Format("Monday, January 2, 2006"))
	b.WriteString("*Automated forecast generated from buoy observations.*\n\n")

	b.WriteString("## North Shore\n\n")
	writeShore(&b, readings, true)

	b.WriteString("## South Shore\n\n")
	writeShore(&b, readings, false)

	b.WriteString("## Winds\n\n")
	writeWinds(&b, readings)

	b.WriteString("## Extended Outlook\n\n")
	b.WriteString("Insufficient data for an extended outlook. Check the latest model runs " +
		"and buoy trends for days 3 and beyond.\n")

	return b.String(), nil
}

func writeShore(b *strings.Builder, readings []buoyReading, north bool) {
	var hts, pers []float64
	var stations []string
	for _, r := range readings {
		if north && !r.north || !north && !r.south {
			continue
		}
		if r.obs.WaveHeight == nil {
			continue
		}
		hts = append(hts, *r.obs.WaveHeight)
		if r.obs.DominantPer != nil {
			pers = append(pers, *r.obs.DominantPer)
		}
		stations = append(stations, r.station)
	}
	if len(hts) == 0 {
		b.WriteString("No buoy observations available for this shore.\n\n")
		return
	}

	htM := mean(hts)
	faceFt := htM * 3.28084 * faceFactor(mean(pers))
	hawaiian := faceFt / 2

	fmt.Fprintf(b, "Offshore buoys (%s) show %.1f m significant wave height", strings.Join(stations, ", "), htM)
	if len(pers) > 0 {
		fmt.Fprintf(b, " at %.0f second periods", mean(pers))
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(b, "Expected faces: %.0f-%.0f ft (%.0f-%.0f ft Hawaiian scale).\n\n",
		faceFt*0.8, faceFt*1.2, hawaiian*0.8, hawaiian*1.2)
}

func writeWinds(b *strings.Builder, readings []buoyReading) {
	var spds, dirs []float64
	for _, r := range readings {
		if r.obs.WindSpeed != nil {
			spds = append(spds, *r.obs.WindSpeed)
		}
		if r.obs.WindDir != nil {
			dirs = append(dirs, *r.obs.WindDir)
		}
	}
	if len(spds) == 0 {
		b.WriteString("No wind observations available.\n\n")
		return
	}
	kt := mean(spds) * 1.94384
	b.WriteString("Offshore winds ")
	if len(dirs) > 0 {
		fmt.Fprintf(b, "from %s ", compass(mean(dirs)))
	}
	fmt.Fprintf(b, "around %.0f kt.\n\n", kt)
}

// faceFactor approximates the shoaling multiplier from deep water height to
// breaking face height as a function of period.
func faceFactor(period float64) float64 {
	switch {
	case period >= 16:
		return 2.0
	case period >= 12:
		return 1.6
	case period >= 9:
		return 1.3
	default:
		return 1.0
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
