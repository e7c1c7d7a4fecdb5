// Package agents implements the per-source collection agents.
//
// Every agent has the shape func(ctx, *collect.Context) ([]swell.Artifact, error)
// and is responsible for fetching its source's artifacts into the bundle
// directory. Agents tolerate partial failure: what could be fetched is
// returned, what could not is logged.
package agents

import (
	"context"
	"log"
	"time"

	"swellforecaster/collect"
	"swellforecaster/swell"
)

// All returns the full agent registry. The collector filters it against the
// [SOURCES] section of the config.
func All() []collect.Agent {
	return []collect.Agent{
		{Name: "buoys", Run: Buoys},
		{Name: "coops", Run: CoOps},
		{Name: "opc", Run: OPC},
		{Name: "wpc", Run: WPC},
		{Name: "nws", Run: NWS},
		{Name: "pacioos", Run: PacIOOS},
		{Name: "pacioos_swan", Run: PacIOOSSwan},
		{Name: "models", Run: WW3Models},
		{Name: "windy", Run: Windy},
		{Name: "open_meteo", Run: OpenMeteo},
		{Name: "stormglass", Run: Stormglass},
		{Name: "surfline", Run: Surfline},
		{Name: "southern_hemisphere", Run: SouthernHemisphere},
		{Name: "north_pacific", Run: NorthPacific},
	}
}

// chart is one URL in a static chart list
type chart struct {
	url      string
	filename string
	subtype  string
	priority int
}

// fetchCharts downloads a chart list, returning one artifact per success.
// Failed charts are logged and skipped.
func fetchCharts(ctx context.Context, c *collect.Context, source, typ string, charts []chart,
	decorate func(*swell.Artifact)) []swell.Artifact {
	var out []swell.Artifact
	for _, ch := range charts {
		fn, err := c.FetchAndSave(ctx, ch.url, ch.filename)
		if err != nil {
			log.Printf("Warning: failed to fetch %s chart %s: %v", source, ch.filename, err)
			continue
		}
		art := swell.Artifact{
			Source:    source,
			Type:      typ,
			Subtype:   ch.subtype,
			Filename:  fn,
			URL:       ch.url,
			Priority:  ch.priority,
			Timestamp: time.Now().UTC(),
		}
		if decorate != nil {
			decorate(&art)
		}
		out = append(out, art)
	}
	return out
}
