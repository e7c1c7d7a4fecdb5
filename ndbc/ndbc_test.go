package ndbc

import (
	"testing"
)

const sampleRealtime2 = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi  hPa    ft
2026 08 30 10 50 070  8.0 10.0   2.1  14.0   8.2 310 1016.2  26.1  26.5    MM   MM   MM    MM
2026 08 30 09 50 080  7.5  9.0   2.0  13.0   8.0 305 1016.0  26.0  26.4    MM   MM   MM    MM
2026 08 30 08 50  MM   MM   MM    MM    MM    MM  MM     MM    MM    MM    MM   MM   MM    MM
`

func TestParseRealtime2(t *testing.T) {
	obs, err := Parse(sampleRealtime2)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// The last row carries a valid date but every data field is "MM";
	// such rows are dropped.
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	for _, o := range obs {
		if o.Time.Hour() == 8 {
			t.Error("all-missing row should have been dropped")
		}
	}

	first := obs[0]
	if first.WaveHeight == nil || *first.WaveHeight != 2.1 {
		t.Errorf("expected wave height 2.1, got %v", first.WaveHeight)
	}
	if first.DominantPer == nil || *first.DominantPer != 14.0 {
		t.Errorf("expected dominant period 14.0, got %v", first.DominantPer)
	}
	if first.MeanWaveDir == nil || *first.MeanWaveDir != 310 {
		t.Errorf("expected mean wave direction 310, got %v", first.MeanWaveDir)
	}
	if first.Time.Year() != 2026 || first.Time.Hour() != 10 || first.Time.Minute() != 50 {
		t.Errorf("unexpected observation time %v", first.Time)
	}
}

func TestLatestReturnsNewestRow(t *testing.T) {
	latest, err := Latest(sampleRealtime2)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Time.Hour() != 10 {
		t.Errorf("expected newest row (hour 10), got hour %d", latest.Time.Hour())
	}
}

func TestParseRejectsEmptyInput(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Parse("#YY MM\n#yr mo\n"); err == nil {
		t.Error("expected error for header-only input")
	}
}

func TestCleanValue(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"MM", nil},
		{"NA", nil},
		{"", nil},
		{"n/a", nil},
		{"garbage", nil},
	}
	for _, c := range cases {
		if got := CleanValue(c.in); got != nil {
			t.Errorf("CleanValue(%q) = %v, want nil", c.in, *got)
		}
	}

	if got := CleanValue("2.5"); got == nil || *got != 2.5 {
		t.Errorf("CleanValue(2.5) = %v", got)
	}
	if got := CleanValue("<1.0"); got == nil || *got != 1.0 {
		t.Errorf("CleanValue(<1.0) = %v", got)
	}
	if got := CleanValue("NNW"); got == nil || *got != 337.5 {
		t.Errorf("CleanValue(NNW) = %v", got)
	}
}

func TestCardinalToDegrees(t *testing.T) {
	if v, ok := CardinalToDegrees("ssw"); !ok || v != 202.5 {
		t.Errorf("CardinalToDegrees(ssw) = %v, %v", v, ok)
	}
	if _, ok := CardinalToDegrees("XYZ"); ok {
		t.Error("expected XYZ to be rejected")
	}
}
