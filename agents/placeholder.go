package agents

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"swellforecaster/collect"
	"swellforecaster/swell"
)

// savePlaceholder renders a grey image carrying the label text and saves it in
// the bundle under name. The returned artifact is flagged as a placeholder so
// curation can score it down.
func savePlaceholder(c *collect.Context, name, subtype, label string) (swell.Artifact, error) {
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name += ".png"

	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{230, 230, 230, 255}}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{80, 80, 80, 255}),
		Face: basicfont.Face7x13,
	}
	lines := []string{
		label,
		time.Now().UTC().Format("2006-01-02 15:04 UTC"),
	}
	for i, line := range lines {
		d.Dot = fixed.P(20, 170+i*20)
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return swell.Artifact{}, fmt.Errorf("encoding placeholder image: %w", err)
	}
	fn, err := c.Save(name, buf.Bytes())
	if err != nil {
		return swell.Artifact{}, err
	}

	return swell.Artifact{
		Source:      "WW3",
		Type:        "chart",
		Subtype:     subtype,
		Filename:    fn,
		Priority:    5,
		Timestamp:   time.Now().UTC(),
		Placeholder: true,
	}, nil
}
