package agents

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"swellforecaster/collect"
	"swellforecaster/swell"
)

// Surface analyses and forecast charts from the Ocean Prediction Center.
// The isobar charts are the backbone of storm tracking; losing one of these
// noticeably degrades forecast quality.
var opcCharts = []chart{
	{"https://ocean.weather.gov/P_sfc_full_ocean_color.png", "opc_P_sfc_full_ocean_color.png", "pacific_surface", 1},
	{"https://ocean.weather.gov/P_w_sfc_color.png", "opc_P_w_sfc_color.png", "west_pacific_surface", 1},
	{"https://ocean.weather.gov/P_e_sfc_color.png", "opc_P_e_sfc_color.png", "east_pacific_surface", 1},

	{"https://ocean.weather.gov/shtml/P_24hrsfc.gif", "opc_P_24hrsfc.gif", "pacific_surface_24hr", 1},
	{"https://ocean.weather.gov/shtml/P_48hrsfc.gif", "opc_P_48hrsfc.gif", "pacific_surface_48hr", 1},
	{"https://ocean.weather.gov/shtml/P_72hrsfc.gif", "opc_P_72hrsfc.gif", "pacific_surface_72hr", 1},
	{"https://ocean.weather.gov/shtml/P_96hrsfc.gif", "opc_P_96hrsfc.gif", "pacific_surface_96hr", 1},

	{"https://ocean.weather.gov/shtml/P_24hrwhs.gif", "opc_P_24hrwhs.gif", "pacific_wave_height_24hr", 1},
	{"https://ocean.weather.gov/shtml/P_48hrwhs.gif", "opc_P_48hrwhs.gif", "pacific_wave_height_48hr", 1},
	{"https://ocean.weather.gov/shtml/P_72hrwhs.gif", "opc_P_72hrwhs.gif", "pacific_wave_height_72hr", 1},

	{"https://ocean.weather.gov/shtml/P_24hrwper.gif", "opc_P_24hrwper.gif", "pacific_wave_period_24hr", 1},
	{"https://ocean.weather.gov/shtml/P_48hrwper.gif", "opc_P_48hrwper.gif", "pacific_wave_period_48hr", 1},
	{"https://ocean.weather.gov/shtml/P_72hrwper.gif", "opc_P_72hrwper.gif", "pacific_wave_period_72hr", 1},

	{"https://ocean.weather.gov/P_24hrwdir.gif", "opc_P_24hrwdir.gif", "pacific_wave_direction_24hr", 1},
	{"https://ocean.weather.gov/P_48hrwdir.gif", "opc_P_48hrwdir.gif", "pacific_wave_direction_48hr", 1},

	{"https://ocean.weather.gov/P_00hrww.gif", "opc_P_00hrww.gif", "pacific_wind_wave_current", 1},
	{"https://ocean.weather.gov/P_reg_00hrww.gif", "opc_P_reg_00hrww.gif", "pacific_regional_current", 1},
}

// OPC collects Ocean Prediction Center surface and wave charts.
func OPC(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	out := fetchCharts(ctx, c, "OPC", "chart", opcCharts, func(a *swell.Artifact) {
		lower := strings.ToLower(a.Subtype)
		a.NorthFacing = strings.Contains(lower, "north") || strings.Contains(lower, "pacific")
		a.SouthFacing = strings.Contains(lower, "south")
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("no OPC charts collected")
	}
	return out, nil
}

var wpcCharts = []chart{
	{"https://tgftp.nws.noaa.gov/fax/PWFA12.TIF", "wpc_pwfa12.tif", "24h_wave", 2},
	{"https://tgftp.nws.noaa.gov/fax/PWFE12.TIF", "wpc_pwfe12.tif", "48h_wave", 2},
	{"https://tgftp.nws.noaa.gov/fax/PWFA11.TIF", "wpc_24hr.tif", "24h_surface", 2},
	{"https://tgftp.nws.noaa.gov/fax/PWFE11.TIF", "wpc_48hr.tif", "48h_surface", 2},
	{"https://mag.ncep.noaa.gov/data/gfs/latest/gfs_npac_024_1000_500_thick.gif", "wpc_gfs_npac_024_thick.gif", "gfs_npac_thickness", 2},
	{"https://mag.ncep.noaa.gov/data/gfs/latest/gfs_npac_024_wv_jet.gif", "wpc_gfs_npac_024_jet.gif", "gfs_npac_jet", 2},
}

// WPC collects Weather Prediction Center fax charts and GFS upper-air charts.
func WPC(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	out := fetchCharts(ctx, c, "WPC", "chart", wpcCharts, nil)
	if len(out) == 0 {
		return nil, fmt.Errorf("no WPC charts collected")
	}
	return out, nil
}

// Hawaii offshore marine zones covered by the Honolulu forecast office.
var nwsZones = map[string]string{
	"north_shore": "PHZ110",
	"south_shore": "PHZ122",
	"windward":    "PHZ117",
}

// NWS collects Honolulu-office marine zone forecasts, active marine alerts
// (Atom feed), and the HFO marine discussion page reduced to readable text.
func NWS(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	var out []swell.Artifact

	for name, zone := range nwsZones {
		u := fmt.Sprintf("https://api.weather.gov/zones/forecast/%s/forecast", zone)
		fn, err := c.FetchAndSave(ctx, u, fmt.Sprintf("nws_%s_forecast.json", name))
		if err != nil {
			log.Printf("Warning: failed to fetch NWS zone forecast %s: %v", zone, err)
			continue
		}
		out = append(out, swell.Artifact{
			Source:      "NWS",
			Type:        "forecast",
			Subtype:     name,
			Filename:    fn,
			URL:         u,
			Priority:    1,
			Timestamp:   time.Now().UTC(),
			NorthFacing: name == "north_shore",
			SouthFacing: name == "south_shore",
		})
	}

	if art, err := nwsAlerts(ctx, c); err != nil {
		log.Printf("Warning: failed to fetch NWS marine alerts: %v", err)
	} else if art != nil {
		out = append(out, *art)
	}

	if art, err := nwsDiscussion(ctx, c); err != nil {
		log.Printf("Warning: failed to fetch HFO marine discussion: %v", err)
	} else if art != nil {
		out = append(out, *art)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no NWS data collected")
	}
	return out, nil
}

// nwsAlerts pulls the active-alerts Atom feed for Hawaii and stores a compact
// text digest of marine-relevant entries.
func nwsAlerts(ctx context.Context, c *collect.Context) (*swell.Artifact, error) {
	feedURL := "https://api.weather.gov/alerts/active.atom?area=HI"
	data, err := c.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse alerts feed: %w", err)
	}

	var b strings.Builder
	for _, item := range feed.Items {
		title := strings.ToLower(item.Title)
		if !strings.Contains(title, "surf") && !strings.Contains(title, "marine") &&
			!strings.Contains(title, "wind") && !strings.Contains(title, "coastal") {
			continue
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", item.Title, item.Description)
	}
	if b.Len() == 0 {
		return nil, nil
	}

	fn, err := c.Save("nws_marine_alerts.txt", []byte(b.String()))
	if err != nil {
		return nil, err
	}
	return &swell.Artifact{
		Source:    "NWS",
		Type:      "alerts",
		Filename:  fn,
		URL:       feedURL,
		Priority:  1,
		Timestamp: time.Now().UTC(),
	}, nil
}

// nwsDiscussion grabs the HFO marine page and strips it down to the forecast
// discussion text so the prompt gets prose instead of navigation markup.
func nwsDiscussion(ctx context.Context, c *collect.Context) (*swell.Artifact, error) {
	pageURL := "https://www.weather.gov/hfo/marine"
	data, err := c.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	parsed, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(data)), parsed)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if len(text) < 100 {
		return nil, fmt.Errorf("discussion text too short (%d bytes)", len(text))
	}

	fn, err := c.Save("nws_hfo_discussion.txt", []byte(text))
	if err != nil {
		return nil, err
	}
	return &swell.Artifact{
		Source:    "NWS",
		Type:      "discussion",
		Filename:  fn,
		URL:       pageURL,
		Priority:  1,
		Timestamp: time.Now().UTC(),
	}, nil
}
