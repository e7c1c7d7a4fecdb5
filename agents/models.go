package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"swellforecaster/collect"
	"swellforecaster/swell"
)

const erddapBase = "https://pae-paha.pacioos.hawaii.edu/erddap"

// PacIOOS collects the Hawaii WW3 regional wave model chart and its variable
// metadata from the PacIOOS ERDDAP server.
func PacIOOS(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	var out []swell.Artifact

	chartURL := erddapBase + "/griddap/ww3_hawaii.png?Thgt%5B(last)%5D&.draw=surface&.vars=longitude|latitude|Thgt"
	fn, err := c.FetchAndSave(ctx, chartURL, "pacioos_ww3_hawaii.png")
	if err != nil {
		log.Printf("Warning: failed to fetch PacIOOS WW3 chart: %v", err)
	} else {
		out = append(out, swell.Artifact{
			Source:      "PacIOOS",
			Type:        "chart",
			Subtype:     "ww3_hawaii",
			Filename:    fn,
			URL:         chartURL,
			Priority:    1,
			Timestamp:   time.Now().UTC(),
			NorthFacing: true,
			SouthFacing: true,
		})
	}

	infoURL := erddapBase + "/info/ww3_hawaii/index.json"
	fn, err = c.FetchAndSave(ctx, infoURL, "pacioos_ww3_info.json")
	if err != nil {
		log.Printf("Warning: failed to fetch PacIOOS WW3 info: %v", err)
	} else {
		out = append(out, swell.Artifact{
			Source:    "PacIOOS",
			Type:      "model",
			Subtype:   "ww3_info",
			Filename:  fn,
			URL:       infoURL,
			Priority:  1,
			Timestamp: time.Now().UTC(),
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no PacIOOS data collected")
	}
	return out, nil
}

// SWAN nearshore views around O'ahu. The lat/lon windows crop the model
// output to each shore.
var swanCharts = []struct {
	variable string
	window   string
	filename string
	subtype  string
	north    bool
	south    bool
}{
	{"shgt", "&.land=under&.lat=21.55:21.75&.lon=-158.20:-158.00", "pacioos_swan_north_shore.png", "north_shore", true, false},
	{"shgt", "&.land=under&.lat=21.25:21.30&.lon=-157.85:-157.80", "pacioos_swan_south_shore.png", "south_shore", false, true},
	{"mdir", "&.land=under", "pacioos_swan_direction.png", "direction", true, true},
	{"mper", "&.land=under", "pacioos_swan_period.png", "period", true, true},
}

// PacIOOSSwan collects the SWAN nearshore wave model charts for both shores.
func PacIOOSSwan(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	var out []swell.Artifact

	for _, sc := range swanCharts {
		u := fmt.Sprintf("%s/griddap/swan_oahu.png?%s%%5B(last)%%5D&.draw=surface&.vars=longitude|latitude|%s"+
			"&.colorBar=Rainbow|||||&.bgColor=0xffccccff%s", erddapBase, sc.variable, sc.variable, sc.window)
		fn, err := c.FetchAndSave(ctx, u, sc.filename)
		if err != nil {
			log.Printf("Warning: failed to fetch SWAN chart %s: %v", sc.filename, err)
			continue
		}
		out = append(out, swell.Artifact{
			Source:      "PacIOOS",
			Type:        "chart",
			Subtype:     "swan_" + sc.subtype,
			Filename:    fn,
			URL:         u,
			Priority:    1,
			Timestamp:   time.Now().UTC(),
			NorthFacing: sc.north,
			SouthFacing: sc.south,
		})
	}

	infoURL := erddapBase + "/info/swan_oahu/index.json"
	fn, err := c.FetchAndSave(ctx, infoURL, "pacioos_swan_info.json")
	if err != nil {
		log.Printf("Warning: failed to fetch SWAN info: %v", err)
	} else {
		out = append(out, swell.Artifact{
			Source:    "PacIOOS",
			Type:      "model",
			Subtype:   "swan_info",
			Filename:  fn,
			URL:       infoURL,
			Priority:  1,
			Timestamp: time.Now().UTC(),
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no SWAN data collected")
	}
	return out, nil
}

var ww3Charts = []chart{
	{"https://polar.ncep.noaa.gov/waves/latest_run/pac-hs.latest_run.gif", "ww3_pacific_overview.gif", "overview", 1},
	{"https://polar.ncep.noaa.gov/waves/latest_run/multi_1.nww3.hs.north_pacific.latest.gif", "ww3_north_pacific_detail.gif", "npac_detail", 1},
	{"https://polar.ncep.noaa.gov/waves/latest_run/multi_1.nww3.hs.hawaii.latest.gif", "ww3_hawaii_detail.gif", "hawaii_detail", 1},
	{"https://polar.ncep.noaa.gov/waves/latest_run/multi_1.nww3.tp.north_pacific.latest.gif", "ww3_north_pacific_period.gif", "npac_period", 1},
	{"https://polar.ncep.noaa.gov/waves/latest_run/multi_1.nww3.dp.north_pacific.latest.gif", "ww3_north_pacific_direction.gif", "npac_direction", 1},
	{"https://polar.ncep.noaa.gov/waves/latest_run/multi_1.nww3.hs.south_pacific.latest.gif", "ww3_south_pacific_detail.gif", "spac_detail", 1},
}

// WW3Models collects the NCEP WaveWatch III chart set. A chart that cannot be
// fetched is replaced by a labelled placeholder image so the gap is visible
// downstream instead of silently missing.
func WW3Models(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	var out []swell.Artifact

	for _, ch := range ww3Charts {
		fn, err := c.FetchAndSave(ctx, ch.url, ch.filename)
		if err != nil {
			log.Printf("Warning: failed to fetch WW3 chart %s, writing placeholder: %v", ch.filename, err)
			art, perr := savePlaceholder(c, ch.filename, ch.subtype,
				fmt.Sprintf("WW3 %s unavailable", ch.subtype))
			if perr != nil {
				log.Printf("Warning: failed to write placeholder for %s: %v", ch.filename, perr)
				continue
			}
			out = append(out, art)
			continue
		}
		north := ch.subtype == "overview" || ch.subtype == "npac_detail" ||
			ch.subtype == "npac_period" || ch.subtype == "npac_direction"
		out = append(out, swell.Artifact{
			Source:      "WW3",
			Type:        "chart",
			Subtype:     ch.subtype,
			Filename:    fn,
			URL:         ch.url,
			Priority:    ch.priority,
			Timestamp:   time.Now().UTC(),
			NorthFacing: north,
			SouthFacing: ch.subtype == "spac_detail" || ch.subtype == "overview",
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no WW3 charts collected")
	}
	return out, nil
}
