package curate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"swellforecaster/config"
	"swellforecaster/swell"
)

func testConfig() *config.Config {
	return &config.Config{
		Forecast: config.Forecast{
			SizeBudget:    4096,
			MaxImages:     8,
			MaxBuoys:      5,
			NorthEmphasis: "auto",
			SouthEmphasis: "auto",
		},
	}
}

// writeBundle lays out artifact files in a temp dir and returns the metadata.
func writeBundle(t *testing.T, files map[string]string) (string, *swell.BundleMeta) {
	t.Helper()
	dir := t.TempDir()
	meta := &swell.BundleMeta{RunID: "test_0"}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, meta
}

func TestCurateRespectsBudget(t *testing.T) {
	dir := t.TempDir()
	meta := &swell.BundleMeta{RunID: "test_0"}
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("model_%02d.json", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(strings.Repeat("x", 800)), 0o644); err != nil {
			t.Fatal(err)
		}
		meta.Results = append(meta.Results, swell.Artifact{
			Source: "OpenMeteo", Type: "api", Subtype: fmt.Sprintf("m%02d", i), Filename: name,
		})
	}

	cu := New(testConfig(), nil)
	sel, err := cu.Curate(dir, meta)
	if err != nil {
		t.Fatalf("Curate failed: %v", err)
	}
	if sel.TotalBytes > 4096 {
		t.Errorf("selection exceeds budget: %d bytes", sel.TotalBytes)
	}
	if len(sel.Models) == 0 {
		t.Error("expected at least one model under budget")
	}
}

func TestCurateAlwaysKeepsCriticalBuoys(t *testing.T) {
	dir, meta := writeBundle(t, map[string]string{
		"ndbc_51001.txt": strings.Repeat("a", 3000),
		"ndbc_51002.txt": strings.Repeat("b", 3000),
		"filler.json":    strings.Repeat("c", 3000),
	})
	meta.Results = []swell.Artifact{
		{Source: "NDBC", Type: "buoy", Buoy: "51001", Filename: "ndbc_51001.txt"},
		{Source: "NDBC", Type: "buoy", Buoy: "51002", Filename: "ndbc_51002.txt"},
		{Source: "OpenMeteo", Type: "api", Subtype: "filler", Filename: "filler.json"},
	}

	cfg := testConfig()
	cfg.Forecast.SizeBudget = 2048 // smaller than a single buoy file
	sel, err := New(cfg, nil).Curate(dir, meta)
	if err != nil {
		t.Fatalf("Curate failed: %v", err)
	}
	if len(sel.Buoys) != 2 {
		t.Fatalf("expected both critical buoys kept, got %d", len(sel.Buoys))
	}
}

func TestCurateDeterministic(t *testing.T) {
	dir, meta := writeBundle(t, map[string]string{
		"a.json": "aaa", "b.json": "bbb", "c.json": "ccc",
	})
	meta.Results = []swell.Artifact{
		{Source: "X", Type: "api", Subtype: "c", Filename: "c.json"},
		{Source: "X", Type: "api", Subtype: "a", Filename: "a.json"},
		{Source: "X", Type: "api", Subtype: "b", Filename: "b.json"},
	}

	cu := New(testConfig(), nil)
	first, err := cu.Curate(dir, meta)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cu.Curate(dir, meta)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Models) != len(second.Models) {
		t.Fatalf("selection size changed between runs: %d vs %d", len(first.Models), len(second.Models))
	}
	for i := range first.Models {
		if first.Models[i].Artifact.Filename != second.Models[i].Artifact.Filename {
			t.Errorf("selection order changed at %d: %s vs %s",
				i, first.Models[i].Artifact.Filename, second.Models[i].Artifact.Filename)
		}
	}
}

func TestCurateSkipsMissingFiles(t *testing.T) {
	dir, meta := writeBundle(t, map[string]string{"present.json": "data"})
	meta.Results = []swell.Artifact{
		{Source: "X", Type: "api", Subtype: "present", Filename: "present.json"},
		{Source: "X", Type: "api", Subtype: "absent", Filename: "absent.json"},
	}

	sel, err := New(testConfig(), nil).Curate(dir, meta)
	if err != nil {
		t.Fatalf("Curate failed: %v", err)
	}
	if len(sel.Models) != 1 {
		t.Fatalf("expected only the present file, got %d", len(sel.Models))
	}
}

func TestCurateDropsErroredArtifacts(t *testing.T) {
	dir, meta := writeBundle(t, map[string]string{"ok.json": "data"})
	meta.Results = []swell.Artifact{
		{Source: "X", Type: "api", Subtype: "ok", Filename: "ok.json"},
		{Source: "Y", Type: "api", Subtype: "bad", Filename: "ok.json", Error: "fetch failed"},
	}

	sel, err := New(testConfig(), nil).Curate(dir, meta)
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Models) != 1 {
		t.Fatalf("errored artifact should be dropped, got %d models", len(sel.Models))
	}
}

type fakeEmbedder struct {
	vecs map[string][]float32
}

func (f *fakeEmbedder) EmbedTexts(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, tx := range texts {
		v, ok := f.vecs[tx]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func TestRedundancyFilterDropsNearDuplicates(t *testing.T) {
	dir, meta := writeBundle(t, map[string]string{
		"first.json":  "same forecast",
		"second.json": "same forecast again",
		"other.json":  "different data",
	})
	meta.Results = []swell.Artifact{
		{Source: "X", Type: "api", Subtype: "first", Filename: "first.json"},
		{Source: "X", Type: "api", Subtype: "second", Filename: "second.json"},
		{Source: "X", Type: "api", Subtype: "other", Filename: "other.json"},
	}

	emb := &fakeEmbedder{vecs: map[string][]float32{
		"same forecast":       {1, 0, 0},
		"same forecast again": {0.999, 0.01, 0},
		"different data":      {0, 1, 0},
	}}
	sel, err := New(testConfig(), emb).Curate(dir, meta)
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Models) != 2 {
		t.Fatalf("expected near-duplicate dropped, got %d models", len(sel.Models))
	}
}

func TestEmphasisSeasons(t *testing.T) {
	cu := New(testConfig(), nil)

	cu.now = func() time.Time { return time.Date(2026, time.July, 1, 0, 0, 0, 0, swell.HST) }
	north, south := cu.emphasis()
	if north || !south {
		t.Errorf("July should be south season, got north=%v south=%v", north, south)
	}

	cu.now = func() time.Time { return time.Date(2026, time.December, 1, 0, 0, 0, 0, swell.HST) }
	north, south = cu.emphasis()
	if !north || south {
		t.Errorf("December should be north season, got north=%v south=%v", north, south)
	}

	cu.cfg.Forecast.SouthEmphasis = "true"
	_, south = cu.emphasis()
	if !south {
		t.Error("explicit south emphasis should override the season")
	}
}

func TestScoreTables(t *testing.T) {
	cases := []struct {
		art  swell.Artifact
		want int
	}{
		{swell.Artifact{Buoy: "51001", Filename: "ndbc_51001.txt"}, 10},
		{swell.Artifact{Filename: "pacioos_swan_north_shore.png"}, 10},
		{swell.Artifact{Filename: "pacioos_swan_direction.png"}, 9},
		{swell.Artifact{Filename: "opc_P_24hrsfc.gif"}, 8},
		{swell.Artifact{Filename: "opc_P_48hrwhs.gif"}, 7},
		{swell.Artifact{Filename: "opc_P_72hrwper.gif"}, 6},
		{swell.Artifact{Filename: "opc_P_96hrsfc.gif"}, 5},
		{swell.Artifact{Filename: "opc_P_sfc_full_ocean_color.png"}, 5},
		{swell.Artifact{Filename: "npac_surface_24h.gif"}, 8},
		{swell.Artifact{Filename: "npac_wave_72h.gif"}, 6},
		{swell.Artifact{Filename: "sh_spac_wind_wave_48h.gif"}, 7},
		{swell.Artifact{Filename: "ww3_pacific_overview.gif"}, 7},
		{swell.Artifact{Filename: "ww3_north_pacific_detail.gif"}, 0},
		{swell.Artifact{Filename: "ww3_south_pacific_detail.gif"}, 0},
		{swell.Artifact{Filename: "ww3_hawaii_detail.gif"}, 0},
		{swell.Artifact{Filename: "coops_honolulu_wind.json"}, 5},
		{swell.Artifact{Filename: "coops_honolulu_water_temp.json"}, 0},
		{swell.Artifact{Filename: "atlantic_chart.gif"}, 0},
		{swell.Artifact{Filename: "something_else.json"}, 3},
	}
	for _, c := range cases {
		if got := Score(c.art); got != c.want {
			t.Errorf("Score(%s) = %d, want %d", c.art.Filename, got, c.want)
		}
	}
}

func TestCritical(t *testing.T) {
	if !Critical(swell.Artifact{Buoy: "51101"}) {
		t.Error("buoy 51101 should be critical")
	}
	if !Critical(swell.Artifact{Filename: "npac_surface_analysis.gif"}) {
		t.Error("surface analysis should be critical")
	}
	for _, name := range []string{
		"opc_P_sfc_full_ocean_color.png",
		"opc_P_w_sfc_color.png",
		"opc_P_e_sfc_color.png",
		"pacioos_swan_south_shore.png",
	} {
		if !Critical(swell.Artifact{Filename: name}) {
			t.Errorf("%s should be critical", name)
		}
	}
	if Critical(swell.Artifact{Filename: "opc_P_24hrsfc.gif"}) {
		t.Error("OPC forecast charts should not be critical")
	}
	if Critical(swell.Artifact{Buoy: "51000", Filename: "ndbc_51000.txt"}) {
		t.Error("buoy 51000 should not be critical")
	}
}
