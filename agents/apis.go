package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"swellforecaster/collect"
	"swellforecaster/swell"
)

// Shore reference points used by the point-forecast APIs.
var (
	northShoreLat, northShoreLon = 21.6168, -158.0968 // Waimea Bay
	southShoreLat, southShoreLon = 21.2734, -157.8257 // Ala Moana
)

// Windy collects point forecasts from the Windy API for both shores. The API
// is rate limited, so calls are throttled by the fetch layer and a 400
// response is treated as the daily quota being exhausted.
func Windy(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	if c.Cfg.API.WindyKey == "" {
		log.Printf("Warning: no Windy API key configured, skipping")
		return nil, nil
	}

	points := []struct {
		name     string
		lat, lon float64
		south    bool
	}{
		{"north_shore", northShoreLat, northShoreLon, false},
		{"south_shore", southShoreLat, southShoreLon, true},
	}

	var out []swell.Artifact
	for _, p := range points {
		body := map[string]any{
			"lat":        p.lat,
			"lon":        p.lon,
			"model":      "gfsWave",
			"parameters": []string{"waves", "swell1", "swell2", "wind"},
			"key":        c.Cfg.API.WindyKey,
		}
		data, err := c.Post(ctx, "https://api.windy.com/api/point-forecast/v2", body)
		if err != nil {
			log.Printf("Warning: failed to fetch Windy forecast for %s: %v", p.name, err)
			continue
		}
		fn, err := c.Save("windy_"+p.name+".json", data)
		if err != nil {
			log.Printf("Warning: failed to save Windy forecast for %s: %v", p.name, err)
			continue
		}
		out = append(out, swell.Artifact{
			Source:      "Windy",
			Type:        "api",
			Subtype:     p.name,
			Filename:    fn,
			URL:         "https://api.windy.com/api/point-forecast/v2",
			Priority:    1,
			Timestamp:   time.Now().UTC(),
			NorthFacing: !p.south,
			SouthFacing: p.south,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no Windy data collected")
	}
	return out, nil
}

// OpenMeteo collects marine and wind forecasts from the Open-Meteo API. No
// key required.
func OpenMeteo(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	reqs := []struct {
		url      string
		filename string
		subtype  string
		south    bool
	}{
		{
			fmt.Sprintf("https://marine-api.open-meteo.com/v1/marine?latitude=%.4f&longitude=%.4f"+
				"&hourly=wave_height,wave_direction,wave_period,swell_wave_height,swell_wave_direction,swell_wave_period&timezone=Pacific%%2FHonolulu",
				northShoreLat, northShoreLon),
			"open_meteo_north_marine.json", "north_marine", false,
		},
		{
			fmt.Sprintf("https://marine-api.open-meteo.com/v1/marine?latitude=%.4f&longitude=%.4f"+
				"&hourly=wave_height,wave_direction,wave_period,swell_wave_height,swell_wave_direction,swell_wave_period&timezone=Pacific%%2FHonolulu",
				southShoreLat, southShoreLon),
			"open_meteo_south_marine.json", "south_marine", true,
		},
		{
			fmt.Sprintf("https://api.open-meteo.com/v1/forecast?latitude=%.4f&longitude=%.4f"+
				"&hourly=wind_speed_10m,wind_direction_10m,wind_gusts_10m&timezone=Pacific%%2FHonolulu",
				northShoreLat, northShoreLon),
			"open_meteo_north_wind.json", "north_wind", false,
		},
		{
			fmt.Sprintf("https://api.open-meteo.com/v1/forecast?latitude=%.4f&longitude=%.4f"+
				"&hourly=wind_speed_10m,wind_direction_10m,wind_gusts_10m&timezone=Pacific%%2FHonolulu",
				southShoreLat, southShoreLon),
			"open_meteo_south_wind.json", "south_wind", true,
		},
	}

	var out []swell.Artifact
	for _, r := range reqs {
		fn, err := c.FetchAndSave(ctx, r.url, r.filename)
		if err != nil {
			log.Printf("Warning: failed to fetch Open-Meteo %s: %v", r.subtype, err)
			continue
		}
		out = append(out, swell.Artifact{
			Source:      "OpenMeteo",
			Type:        "api",
			Subtype:     r.subtype,
			Filename:    fn,
			URL:         r.url,
			Priority:    1,
			Timestamp:   time.Now().UTC(),
			NorthFacing: !r.south,
			SouthFacing: r.south,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no Open-Meteo data collected")
	}
	return out, nil
}

// Stormglass collects combined-source marine forecasts from the Stormglass
// API. The free tier allows a handful of requests per day, so only the two
// shore points are queried.
func Stormglass(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	if c.Cfg.API.StormglassKey == "" {
		log.Printf("Warning: no Stormglass API key configured, skipping")
		return nil, nil
	}

	params := "waveHeight,waveDirection,wavePeriod,swellHeight,swellDirection,swellPeriod,windSpeed,windDirection"
	points := []struct {
		name     string
		lat, lon float64
		south    bool
	}{
		{"north_shore", northShoreLat, northShoreLon, false},
		{"south_shore", southShoreLat, southShoreLon, true},
	}

	headers := map[string]string{"Authorization": c.Cfg.API.StormglassKey}

	var out []swell.Artifact
	for _, p := range points {
		u := fmt.Sprintf("https://api.stormglass.io/v2/weather/point?lat=%.4f&lng=%.4f&params=%s", p.lat, p.lon, params)
		data, err := c.FetchHeaders(ctx, u, headers)
		if err != nil {
			log.Printf("Warning: failed to fetch Stormglass forecast for %s: %v", p.name, err)
			continue
		}
		fn, err := c.Save("stormglass_"+p.name+".json", data)
		if err != nil {
			log.Printf("Warning: failed to save Stormglass forecast for %s: %v", p.name, err)
			continue
		}
		out = append(out, swell.Artifact{
			Source:      "Stormglass",
			Type:        "api",
			Subtype:     p.name,
			Filename:    fn,
			URL:         u,
			Priority:    1,
			Timestamp:   time.Now().UTC(),
			NorthFacing: !p.south,
			SouthFacing: p.south,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no Stormglass data collected")
	}
	return out, nil
}

// Public Surfline spot IDs for the reference breaks.
var surflineSpots = []struct {
	id    string
	name  string
	south bool
}{
	{"5842041f4e65fad6a7708df5", "pipeline", false},
	{"5842041f4e65fad6a7708df3", "sunset", false},
	{"5842041f4e65fad6a7708df1", "waimea", false},
	{"5842041f4e65fad6a7708df9", "ala_moana", true},
	{"5842041f4e65fad6a7708dfb", "diamond_head", true},
}

// Surfline collects spot forecasts from the public Surfline KBYG endpoints.
func Surfline(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	var out []swell.Artifact
	for _, sp := range surflineSpots {
		u := fmt.Sprintf("https://services.surfline.com/kbyg/spots/forecasts/wave?spotId=%s&days=5&intervalHours=3", sp.id)
		fn, err := c.FetchAndSave(ctx, u, "surfline_"+sp.name+".json")
		if err != nil {
			log.Printf("Warning: failed to fetch Surfline forecast for %s: %v", sp.name, err)
			continue
		}
		out = append(out, swell.Artifact{
			Source:      "Surfline",
			Type:        "api",
			Subtype:     sp.name,
			Filename:    fn,
			URL:         u,
			Priority:    1,
			Timestamp:   time.Now().UTC(),
			NorthFacing: !sp.south,
			SouthFacing: sp.south,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no Surfline data collected")
	}
	return out, nil
}
