package curate

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"swellforecaster/config"
	"swellforecaster/swell"
)

// Item is a selected text artifact with its content loaded.
type Item struct {
	Artifact swell.Artifact
	Content  []byte
	Score    int
}

// Image is a selected chart prepared for prompt embedding.
type Image struct {
	Artifact swell.Artifact
	Base64   string
	MIMEType string
	Score    int
}

// Selection is the curated view of a bundle, grouped the way the prompt
// builder consumes it.
type Selection struct {
	Buoys       []Item
	Models      []Item
	Images      []Image
	Other       []Item
	Summary     string
	TotalBytes  int
	NorthSeason bool
	SouthSeason bool
}

// Curator selects bundle artifacts under a byte budget.
type Curator struct {
	cfg      *config.Config
	embedder EmbeddingsProvider
	now      func() time.Time
}

// New returns a curator. The embeddings provider is optional; pass nil to
// skip the redundancy filter.
func New(cfg *config.Config, embedder EmbeddingsProvider) *Curator {
	return &Curator{cfg: cfg, embedder: embedder, now: time.Now}
}

// Curate loads, scores, and selects artifacts from the bundle directory. The
// returned selection never exceeds the configured byte budget except through
// critical artifacts, which are always kept.
func (cu *Curator) Curate(bundleDir string, meta *swell.BundleMeta) (*Selection, error) {
	north, south := cu.emphasis()
	sel := &Selection{NorthSeason: north, SouthSeason: south}

	type scored struct {
		art      swell.Artifact
		score    int
		critical bool
	}
	var cands []scored
	for _, a := range meta.Results {
		if a.Error != "" || a.Filename == "" {
			continue
		}
		s := Score(a)
		if s == 0 {
			continue
		}
		if north && a.NorthFacing {
			s += 2
		}
		if south && a.SouthFacing {
			s += 2
		}
		cands = append(cands, scored{art: a, score: s, critical: Critical(a)})
	}

	// Critical first, then by score, then by name so ties are stable.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].critical != cands[j].critical {
			return cands[i].critical
		}
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].art.Filename < cands[j].art.Filename
	})

	budget := cu.cfg.Forecast.SizeBudget
	maxImages := cu.cfg.Forecast.MaxImages
	maxBuoys := cu.cfg.Forecast.MaxBuoys
	images, buoys := 0, 0

	for _, c := range cands {
		isImage := isImageFile(c.art.Filename)

		if isImage {
			if images >= maxImages {
				continue
			}
			img, err := PrepareImage(filepath.Join(bundleDir, c.art.Filename))
			if err != nil {
				log.Printf("Warning: skipping image %s: %v", c.art.Filename, err)
				continue
			}
			if !c.critical && sel.TotalBytes+len(img.Base64) > budget {
				continue
			}
			sel.Images = append(sel.Images, Image{
				Artifact: c.art,
				Base64:   img.Base64,
				MIMEType: img.MIMEType,
				Score:    c.score,
			})
			sel.TotalBytes += len(img.Base64)
			images++
			continue
		}

		data, err := os.ReadFile(filepath.Join(bundleDir, c.art.Filename))
		if err != nil {
			log.Printf("Warning: skipping missing artifact %s: %v", c.art.Filename, err)
			continue
		}
		if !c.critical && sel.TotalBytes+len(data) > budget {
			continue
		}
		item := Item{Artifact: c.art, Content: data, Score: c.score}
		switch {
		case c.art.Type == "buoy" || c.art.Buoy != "":
			if buoys >= maxBuoys && !c.critical {
				continue
			}
			sel.Buoys = append(sel.Buoys, item)
			buoys++
		case c.art.Type == "model" || c.art.Type == "api":
			sel.Models = append(sel.Models, item)
		default:
			sel.Other = append(sel.Other, item)
		}
		sel.TotalBytes += len(data)
	}

	cu.filterRedundant(sel)
	sel.Summary = cu.summarize(sel)
	return sel, nil
}

// emphasis resolves the auto/true/false shore flags. South swell season runs
// roughly April through September; north the rest of the year.
func (cu *Curator) emphasis() (north, south bool) {
	month := cu.now().In(swell.HST).Month()
	southSeason := month >= time.April && month <= time.September

	switch cu.cfg.Forecast.NorthEmphasis {
	case "true":
		north = true
	case "false":
		north = false
	default:
		north = !southSeason
	}
	switch cu.cfg.Forecast.SouthEmphasis {
	case "true":
		south = true
	case "false":
		south = false
	default:
		south = southSeason
	}
	return north, south
}

// filterRedundant drops near-duplicate model/api artifacts using embedding
// cosine similarity. A nil or failing embedder leaves the selection untouched.
func (cu *Curator) filterRedundant(sel *Selection) {
	if cu.embedder == nil || len(sel.Models) < 2 {
		return
	}
	texts := make([]string, len(sel.Models))
	for i, it := range sel.Models {
		t := string(it.Content)
		if len(t) > 2000 {
			t = t[:2000]
		}
		texts[i] = t
	}
	vecs, err := cu.embedder.EmbedTexts(texts)
	if err != nil {
		log.Printf("Warning: redundancy filter skipped: %v", err)
		return
	}
	if len(vecs) != len(sel.Models) {
		return
	}

	kept := sel.Models[:0]
	var keptVecs [][]float32
	for i, it := range sel.Models {
		dup := false
		for _, kv := range keptVecs {
			if cosineSimilarity(vecs[i], kv) > 0.97 {
				dup = true
				break
			}
		}
		if dup {
			log.Printf("Warning: dropping near-duplicate artifact %s", it.Artifact.Filename)
			sel.TotalBytes -= len(it.Content)
			continue
		}
		kept = append(kept, it)
		keptVecs = append(keptVecs, vecs[i])
	}
	sel.Models = kept
}

func (cu *Curator) summarize(sel *Selection) string {
	var b strings.Builder

	b.WriteString("Curated data summary:\n")
	fmt.Fprintf(&b, "- Buoy observations: %d stations (", len(sel.Buoys))
	for i, it := range sel.Buoys {
		if i > 0 {
			b.WriteString(", ")
		}
		if it.Artifact.Buoy != "" {
			b.WriteString(it.Artifact.Buoy)
		} else {
			b.WriteString(it.Artifact.Subtype)
		}
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "- Model and API forecasts: %d (", len(sel.Models))
	for i, it := range sel.Models {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s/%s", it.Artifact.Source, it.Artifact.Subtype)
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "- Charts attached: %d (", len(sel.Images))
	for i, im := range sel.Images {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s/%s", im.Artifact.Source, im.Artifact.Subtype)
	}
	b.WriteString(")\n")
	if len(sel.Other) > 0 {
		fmt.Fprintf(&b, "- Other text products: %d\n", len(sel.Other))
	}
	fmt.Fprintf(&b, "- Total prompt payload: %d bytes\n", sel.TotalBytes)
	return b.String()
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".gif", ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	}
	return false
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
