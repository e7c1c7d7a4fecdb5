package agents

import (
	"context"
	"fmt"

	"swellforecaster/collect"
	"swellforecaster/swell"
)

// Southern-hemisphere charts track storms in the Tasman Sea and south Pacific
// that arrive as south swell one to two weeks later.
var southernHemisphereCharts = []chart{
	{"https://tgftp.nws.noaa.gov/fax/PYFE10.gif", "sh_spac_streamline.gif", "streamline", 1},
	{"https://tgftp.nws.noaa.gov/fax/PWFA11.gif", "sh_spac_wind_wave_24h.gif", "wind_wave_24h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PWFE11.gif", "sh_spac_wind_wave_48h.gif", "wind_wave_48h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PWFE12.gif", "sh_spac_wind_wave_72h.gif", "wind_wave_72h", 1},
	{"https://www.metservice.com/publicData/rainRadar/image/waves-hs-nz", "sh_metservice_nz_waves.gif", "nz_waves", 2},
	{"https://polar.ncep.noaa.gov/waves/latest_run/gfswave.hs.aus_ind_phi.latest.gif", "sh_gfswave_tasman.gif", "gfswave_tasman", 1},
	{"https://polar.ncep.noaa.gov/waves/latest_run/gfswave.hs.sh_pac.latest.gif", "sh_gfswave_south_pacific.gif", "gfswave_spac", 1},
}

// SouthernHemisphere collects storm-tracking charts for south swell genesis
// regions.
func SouthernHemisphere(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	out := fetchCharts(ctx, c, "SouthernHemisphere", "chart", southernHemisphereCharts, func(a *swell.Artifact) {
		a.SouthFacing = true
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("no southern hemisphere charts collected")
	}
	return out, nil
}

// North Pacific surface analysis and forecast fax charts from the Ocean
// Prediction Center via tgftp.
var northPacificCharts = []chart{
	{"https://tgftp.nws.noaa.gov/fax/PPAE10.gif", "npac_surface_analysis.gif", "surface_analysis", 1},
	{"https://tgftp.nws.noaa.gov/fax/PPAE11.gif", "npac_surface_24h.gif", "surface_24h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PPAE12.gif", "npac_surface_48h.gif", "surface_48h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PPAE13.gif", "npac_surface_72h.gif", "surface_72h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PJFA10.gif", "npac_wave_24h.gif", "wave_24h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PJFA11.gif", "npac_wave_48h.gif", "wave_48h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PJFA12.gif", "npac_wave_72h.gif", "wave_72h", 1},
	{"https://tgftp.nws.noaa.gov/fax/PJFA13.gif", "npac_wave_96h.gif", "wave_96h", 1},
}

// NorthPacific collects the OPC north Pacific analysis and wave forecast fax
// series for north swell tracking.
func NorthPacific(ctx context.Context, c *collect.Context) ([]swell.Artifact, error) {
	out := fetchCharts(ctx, c, "NorthPacific", "chart", northPacificCharts, func(a *swell.Artifact) {
		a.NorthFacing = true
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("no north pacific charts collected")
	}
	return out, nil
}
