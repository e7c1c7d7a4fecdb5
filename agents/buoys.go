package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"swellforecaster/collect"
	"swellforecaster/swell"
)

// Buoy stations around the Hawaiian islands. 51001/51101 sit upstream of the
// North Shore; 51002/51004 catch southern-hemisphere energy first.
var (
	ndbcBuoys       = []string{"51001", "51002", "51101", "51000", "51003", "51004"}
	northShoreBuoys = map[string]bool{"51000": true, "51001": true, "51003": true, "51101": true}
	southShoreBuoys = map[string]bool{"51002": true, "51004": true}
	cdipBuoys       = []string{"106", "188", "098", "096"} // Waimea, Mokapu and friends
)

// Buoys collects NDBC realtime and spectral observations plus CDIP buoy data.
func Buoys(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	var out []swell.Artifact

	for _, bid := range ndbcBuoys {
		url := fmt.Sprintf("https://www.ndbc.noaa.gov/data/realtime2/%s.txt", bid)
		fn, err := c.FetchAndSave(ctx, url, fmt.Sprintf("ndbc_%s.txt", bid))
		if err != nil {
			log.Printf("Warning: failed to fetch NDBC buoy %s: %v", bid, err)
		} else {
			out = append(out, swell.Artifact{
				Source:      "NDBC",
				Type:        "realtime",
				Filename:    fn,
				URL:         url,
				Buoy:        bid,
				Priority:    0,
				Timestamp:   time.Now().UTC(),
				NorthFacing: northShoreBuoys[bid],
				SouthFacing: southShoreBuoys[bid],
			})
		}

		// Spectral data is absent for some stations; failures stay quiet.
		specURL := fmt.Sprintf("https://www.ndbc.noaa.gov/data/realtime2/%s.spec", bid)
		fn, err = c.FetchAndSave(ctx, specURL, fmt.Sprintf("ndbc_%s_spec.txt", bid))
		if err == nil {
			out = append(out, swell.Artifact{
				Source:      "NDBC",
				Type:        "spectral",
				Filename:    fn,
				URL:         specURL,
				Buoy:        bid,
				Priority:    1,
				Timestamp:   time.Now().UTC(),
				NorthFacing: northShoreBuoys[bid],
				SouthFacing: southShoreBuoys[bid],
			})
		}
	}

	for _, cid := range cdipBuoys {
		url := fmt.Sprintf("https://cdip.ucsd.edu/data_access/rest/buoy_data/%s/latest", cid)
		fn, err := c.FetchAndSave(ctx, url, fmt.Sprintf("cdip_%s.json", cid))
		if err != nil {
			log.Printf("Warning: failed to fetch CDIP buoy %s: %v", cid, err)
			continue
		}
		out = append(out, swell.Artifact{
			Source:    "CDIP",
			Type:      "realtime",
			Filename:  fn,
			URL:       url,
			Buoy:      cid,
			Priority:  0,
			Timestamp: time.Now().UTC(),
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no buoy data collected")
	}
	return out, nil
}

// CoOps collects NOAA CO-OPS wind and water temperature readings for the
// Honolulu and Kaneohe tide stations.
func CoOps(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	stations := map[string]string{
		"1612340": "honolulu",
		"1612480": "kaneohe",
	}
	products := []struct {
		id       string
		product  string
		priority int
	}{
		{"wind", "wind", 1},
		{"water_temp", "water_temperature", 2},
	}

	var out []swell.Artifact
	for stationID, name := range stations {
		for _, p := range products {
			url := fmt.Sprintf("https://api.tidesandcurrents.noaa.gov/api/prod/datagetter?"+
				"station=%s&product=%s&date=latest&units=english&time_zone=gmt&"+
				"interval=hourly&format=json&application=SwellForecaster", stationID, p.product)
			fn, err := c.FetchAndSave(ctx, url, fmt.Sprintf("coops_%s_%s.json", name, p.id))
			if err != nil {
				log.Printf("Warning: failed to fetch CO-OPS %s for %s: %v", p.id, name, err)
				continue
			}
			out = append(out, swell.Artifact{
				Source:    "NOAA CO-OPS",
				Type:      p.id,
				Filename:  fn,
				URL:       url,
				Station:   stationID,
				Priority:  p.priority,
				Timestamp: time.Now().UTC(),
			})
		}
	}
	return out, nil
}
