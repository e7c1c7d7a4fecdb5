package analyze

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderInterpolation(t *testing.T) {
	got := Render("Forecast for {date}: {summary}", map[string]string{
		"date":    "Monday",
		"summary": "2 buoys",
	})
	want := "Forecast for Monday: 2 buoys"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	got := Render("hello {missing}", map[string]string{"other": "x"})
	if got != "hello {missing}" {
		t.Errorf("unknown placeholder should survive, got %q", got)
	}
}

func TestLoadPromptsMissingFileUsesDefaults(t *testing.T) {
	p := LoadPrompts(filepath.Join(t.TempDir(), "nope.json"))
	if p.Intro == "" || p.Structure == "" {
		t.Error("defaults should be populated when the file is missing")
	}
}

func TestLoadPromptsInvalidJSONUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := LoadPrompts(path)
	if p.Intro == "" {
		t.Error("defaults should be populated when the file is invalid")
	}
}

func TestLoadPromptsPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	if err := os.WriteFile(path, []byte(`{"intro": "custom intro"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	p := LoadPrompts(path)
	if p.Intro != "custom intro" {
		t.Errorf("custom intro not applied: %q", p.Intro)
	}
	if p.Structure == "" {
		t.Error("unset fields should keep defaults")
	}
}

func TestBuildPromptEmphasis(t *testing.T) {
	p := defaultPrompts()
	vars := map[string]string{"date": "today", "summary": "data"}

	northOnly := BuildPrompt(p, vars, true, false, "")
	if !strings.Contains(northOnly, "north swell season") {
		t.Error("north emphasis missing")
	}
	if strings.Contains(northOnly, "south swell season") {
		t.Error("south emphasis should be absent")
	}

	southOnly := BuildPrompt(p, vars, false, true, "")
	if !strings.Contains(southOnly, "south swell season") {
		t.Error("south emphasis missing")
	}

	both := BuildPrompt(p, vars, true, true, "")
	if !strings.Contains(both, "equal weight") {
		t.Error("both-shores emphasis missing")
	}
}

func TestBuildPromptIncludesSouthSwell(t *testing.T) {
	p := defaultPrompts()
	vars := map[string]string{"date": "today", "summary": "data"}
	got := BuildPrompt(p, vars, false, true, "6.2 ft at 16 seconds from 190 degrees (S)")
	if !strings.Contains(got, "6.2 ft at 16 seconds") {
		t.Error("south swell details not interpolated")
	}
}
