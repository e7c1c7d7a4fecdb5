package analyze

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

// Prompts holds the forecast prompt templates. Fields use {placeholder}
// interpolation via Render.
type Prompts struct {
	Intro         string `json:"intro"`
	EmphasisNorth string `json:"emphasis_north"`
	EmphasisSouth string `json:"emphasis_south"`
	EmphasisBoth  string `json:"emphasis_both"`
	DataSources   string `json:"data_sources"`
	Structure     string `json:"structure"`
	SouthSwell    string `json:"south_swell"`
	NorthPacific  string `json:"north_pacific"`
}

// LoadPrompts reads templates from path, falling back to the built-in set when
// the file is absent or invalid.
func LoadPrompts(path string) *Prompts {
	p := defaultPrompts()
	if path == "" {
		return p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: using built-in prompts, cannot read %s: %v", path, err)
		return p
	}
	var loaded Prompts
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("Warning: using built-in prompts, cannot parse %s: %v", path, err)
		return p
	}
	merge(p, &loaded)
	return p
}

// merge copies non-empty fields from src over dst so a partial prompts file
// still gets defaults for the rest.
func merge(dst, src *Prompts) {
	if src.Intro != "" {
		dst.Intro = src.Intro
	}
	if src.EmphasisNorth != "" {
		dst.EmphasisNorth = src.EmphasisNorth
	}
	if src.EmphasisSouth != "" {
		dst.EmphasisSouth = src.EmphasisSouth
	}
	if src.EmphasisBoth != "" {
		dst.EmphasisBoth = src.EmphasisBoth
	}
	if src.DataSources != "" {
		dst.DataSources = src.DataSources
	}
	if src.Structure != "" {
		dst.Structure = src.Structure
	}
	if src.SouthSwell != "" {
		dst.SouthSwell = src.SouthSwell
	}
	if src.NorthPacific != "" {
		dst.NorthPacific = src.NorthPacific
	}
}

// Render substitutes {name} placeholders in a template. Unknown placeholders
// are left in place so a bad template is visible in the output rather than
// silently blanked.
func Render(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

func defaultPrompts() *Prompts {
	return &Prompts{
		Intro: "You are an expert surf forecaster for the Hawaiian Islands, specializing in O'ahu. " +
			"Write a detailed surf forecast for {date} (Hawaii Standard Time) using the observations, " +
			"model output, and charts provided below.",
		EmphasisNorth: "It is north swell season. Give extra attention to North Shore conditions, " +
			"north Pacific storm tracks, and arriving or building northwest swells.",
		EmphasisSouth: "It is south swell season. Give extra attention to South Shore conditions, " +
			"southern hemisphere storm activity, and long-period south swells.",
		EmphasisBoth: "Cover both shores with equal weight, noting any swell activity in either hemisphere.",
		DataSources:  "Data provided:\n{summary}",
		Structure: "Structure the forecast as:\n" +
			"1. Overview\n" +
			"2. North Shore - current conditions, incoming swells, day-by-day outlook\n" +
			"3. South Shore - current conditions, incoming swells, day-by-day outlook\n" +
			"4. Winds - trade wind outlook and local effects\n" +
			"5. Extended outlook (days 4-10)\n" +
			"Give face heights in Hawaiian scale and standard scale, with timing in HST.",
		SouthSwell: "Significant south swell detected at buoy 51002: {south_swell_details}. " +
			"Track its arrival window and expected South Shore heights carefully.",
		NorthPacific: "Active north Pacific pattern. Use the surface analyses and WW3 charts to " +
			"estimate swell arrival timing from fetch position and propagation speed.",
	}
}

// BuildPrompt assembles the full forecast prompt from the templates and the
// curated summary.
func BuildPrompt(p *Prompts, vars map[string]string, north, south bool, southSwell string) string {
	var b strings.Builder
	b.WriteString(Render(p.Intro, vars))
	b.WriteString("\n\n")
	switch {
	case north && south, !north && !south:
		b.WriteString(Render(p.EmphasisBoth, vars))
	case north:
		b.WriteString(Render(p.EmphasisNorth, vars))
	default:
		b.WriteString(Render(p.EmphasisSouth, vars))
	}
	b.WriteString("\n\n")
	if southSwell != "" {
		swellVars := map[string]string{"south_swell_details": southSwell}
		b.WriteString(Render(p.SouthSwell, swellVars))
		b.WriteString("\n\n")
	}
	if north {
		b.WriteString(Render(p.NorthPacific, vars))
		b.WriteString("\n\n")
	}
	b.WriteString(Render(p.DataSources, vars))
	b.WriteString("\n\n")
	b.WriteString(Render(p.Structure, vars))
	return b.String()
}
