package analyze

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"swellforecaster/config"
	"swellforecaster/curate"
	"swellforecaster/swell"
)

const buoy51002South = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa
2026 08 30 10 50 070  8.0 10.0   1.8  17.0   9.1 190 1016.2
`

const buoy51001North = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa
2026 08 30 10 50 060  9.0 11.0   2.4  14.0   8.5 320 1015.8
`

func testConfig() *config.Config {
	return &config.Config{
		General:  config.General{Model: "gpt-4.1"},
		Forecast: config.Forecast{PromptsFile: ""},
	}
}

type fakeChat struct {
	lastReq openai.ChatCompletionRequest
	resp    string
	err     error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.resp}},
		},
	}, nil
}

func southSelection() *curate.Selection {
	return &curate.Selection{
		Buoys: []curate.Item{
			{
				Artifact: swell.Artifact{Source: "NDBC", Type: "buoy", Buoy: "51002", SouthFacing: true},
				Content:  []byte(buoy51002South),
			},
			{
				Artifact: swell.Artifact{Source: "NDBC", Type: "buoy", Buoy: "51001", NorthFacing: true},
				Content:  []byte(buoy51001North),
			},
		},
		Summary:     "2 buoys",
		SouthSeason: true,
	}
}

func TestSouthSwellDetails(t *testing.T) {
	got := SouthSwellDetails(southSelection())
	if got == "" {
		t.Fatal("expected south swell to be detected")
	}
	if !strings.Contains(got, "17 seconds") || !strings.Contains(got, "190 degrees") {
		t.Errorf("unexpected details: %q", got)
	}
}

func TestSouthSwellIgnoresNorthSwell(t *testing.T) {
	sel := &curate.Selection{
		Buoys: []curate.Item{
			{
				Artifact: swell.Artifact{Source: "NDBC", Type: "buoy", Buoy: "51002"},
				Content:  []byte(buoy51001North), // 320 degrees, out of the south window
			},
		},
	}
	if got := SouthSwellDetails(sel); got != "" {
		t.Errorf("north swell should not register as south swell: %q", got)
	}
}

func TestAnalyzeUsesLLMResponse(t *testing.T) {
	chat := &fakeChat{resp: "# Forecast\n\nClean conditions."}
	an := New(testConfig(), chat)

	got, err := an.Analyze(context.Background(), southSelection())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got != chat.resp {
		t.Errorf("expected LLM response to be returned, got %q", got)
	}
	if chat.lastReq.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", chat.lastReq.Temperature)
	}
	if chat.lastReq.Model != "gpt-4.1" {
		t.Errorf("model = %q", chat.lastReq.Model)
	}
}

func TestAnalyzeAttachesImages(t *testing.T) {
	chat := &fakeChat{resp: "ok"}
	an := New(testConfig(), chat)

	sel := southSelection()
	sel.Images = []curate.Image{
		{Artifact: swell.Artifact{Source: "OPC"}, Base64: "aGVsbG8=", MIMEType: "image/png"},
	}
	if _, err := an.Analyze(context.Background(), sel); err != nil {
		t.Fatal(err)
	}

	parts := chat.lastReq.Messages[0].MultiContent
	var imageParts int
	for _, p := range parts {
		if p.Type == openai.ChatMessagePartTypeImageURL {
			imageParts++
			if !strings.HasPrefix(p.ImageURL.URL, "data:image/png;base64,") {
				t.Errorf("unexpected image url prefix: %s", p.ImageURL.URL[:30])
			}
		}
	}
	if imageParts != 1 {
		t.Errorf("expected 1 image part, got %d", imageParts)
	}
}

func TestAnalyzeFallsBackOnLLMError(t *testing.T) {
	chat := &fakeChat{err: errors.New("quota exhausted")}
	an := New(testConfig(), chat)

	got, err := an.Analyze(context.Background(), southSelection())
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if !strings.Contains(got, "North Shore") || !strings.Contains(got, "South Shore") {
		t.Errorf("fallback forecast missing shore sections: %q", got)
	}
}

func TestAnalyzeWithNilClientFallsBack(t *testing.T) {
	an := New(testConfig(), nil)
	got, err := an.Analyze(context.Background(), southSelection())
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if !strings.Contains(got, "Surf Forecast") {
		t.Errorf("fallback forecast missing title: %q", got)
	}
}

func TestFallbackWithNoDataStillProducesForecast(t *testing.T) {
	got, err := Fallback(&curate.Selection{}, time.Date(2026, 8, 30, 6, 0, 0, 0, swell.HST))
	if err != nil {
		t.Fatalf("Fallback failed: %v", err)
	}
	for _, section := range []string{"North Shore", "South Shore", "Winds", "Extended Outlook"} {
		if !strings.Contains(got, section) {
			t.Errorf("missing section %q", section)
		}
	}
	if !strings.Contains(got, "No buoy observations available") {
		t.Error("empty selection should say observations are unavailable")
	}
}

func TestFallbackReportsBuoyNumbers(t *testing.T) {
	got, err := Fallback(southSelection(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "51001") {
		t.Errorf("north buoy station missing from forecast: %q", got)
	}
	if !strings.Contains(got, "kt") {
		t.Error("wind section should report knots")
	}
}
