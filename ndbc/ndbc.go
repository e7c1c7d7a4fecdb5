// Package ndbc parses NDBC realtime2 buoy observation files.
//
// The realtime2 format is two comment header lines (column names and units)
// followed by whitespace-separated rows, newest first. Missing values appear
// as "MM" and wave directions occasionally as compass points.
package ndbc

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Observation is a single buoy reading with the fields that matter for
// swell forecasting. Nil pointers mean the value was missing.
type Observation struct {
	Time        time.Time
	WaveHeight  *float64 // WVHT, meters
	DominantPer *float64 // DPD, seconds
	AveragePer  *float64 // APD, seconds
	MeanWaveDir *float64 // MWD, degrees true
	WindDir     *float64 // WDIR, degrees true
	WindSpeed   *float64 // WSPD, m/s
	Pressure    *float64 // PRES, hPa
}

// empty reports whether every data field was missing.
func (o Observation) empty() bool {
	return o.WaveHeight == nil && o.DominantPer == nil && o.AveragePer == nil &&
		o.MeanWaveDir == nil && o.WindDir == nil && o.WindSpeed == nil &&
		o.Pressure == nil
}

var cardinalDegrees = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

var numericRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// CardinalToDegrees converts a compass point to degrees true.
func CardinalToDegrees(dir string) (float64, bool) {
	v, ok := cardinalDegrees[strings.ToUpper(strings.TrimSpace(dir))]
	return v, ok
}

// CleanValue normalizes a raw buoy field to a float. Missing-value markers
// return nil; comparison-operator prefixes ("<1.0") are stripped; compass
// points convert to degrees.
func CleanValue(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch strings.ToUpper(raw) {
	case "MM", "NA", "N/A", "MISSING", "NULL":
		return nil
	}
	if deg, ok := CardinalToDegrees(raw); ok {
		return &deg
	}
	if strings.ContainsAny(raw, "<>=") {
		raw = strings.Trim(raw, "<>=")
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return &v
	}
	if m := numericRe.FindString(raw); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return &v
		}
	}
	return nil
}

// Parse reads a realtime2 file and returns observations, newest first.
func Parse(data string) ([]Observation, error) {
	var columns []string
	var out []Observation

	sc := bufio.NewScanner(strings.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			// First header line carries the column names; second carries units.
			if columns == nil {
				columns = strings.Fields(strings.TrimLeft(line, "# "))
			}
			continue
		}
		if columns == nil {
			return nil, fmt.Errorf("data row before header line")
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		obs, err := parseRow(columns, fields)
		if err != nil || obs.empty() {
			// Rows with a date but every data field "MM" add nothing.
			continue
		}
		out = append(out, obs)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no observations found")
	}
	return out, nil
}

// Latest returns the most recent observation in a realtime2 file.
func Latest(data string) (Observation, error) {
	obs, err := Parse(data)
	if err != nil {
		return Observation{}, err
	}
	return obs[0], nil
}

func parseRow(columns, fields []string) (Observation, error) {
	var obs Observation
	var yr, mo, dy, hr, mn int

	for i, col := range columns {
		if i >= len(fields) {
			break
		}
		raw := fields[i]
		switch strings.ToUpper(col) {
		case "YY", "#YY", "YYYY":
			yr = atoiOrZero(raw)
		case "MM":
			// First MM column is the month; later ones (minute) are positional.
			if mo == 0 {
				mo = atoiOrZero(raw)
			} else if mn == 0 {
				mn = atoiOrZero(raw)
			}
		case "DD":
			dy = atoiOrZero(raw)
		case "HH":
			hr = atoiOrZero(raw)
		case "WVHT":
			obs.WaveHeight = CleanValue(raw)
		case "DPD":
			obs.DominantPer = CleanValue(raw)
		case "APD":
			obs.AveragePer = CleanValue(raw)
		case "MWD":
			obs.MeanWaveDir = CleanValue(raw)
		case "WDIR":
			obs.WindDir = CleanValue(raw)
		case "WSPD":
			obs.WindSpeed = CleanValue(raw)
		case "PRES":
			obs.Pressure = CleanValue(raw)
		}
	}

	if yr == 0 || mo == 0 || dy == 0 {
		return obs, fmt.Errorf("row missing date fields")
	}
	if yr < 100 {
		yr += 2000
	}
	obs.Time = time.Date(yr, time.Month(mo), dy, hr, mn, 0, 0, time.UTC)
	return obs, nil
}

func atoiOrZero(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
