package curate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	maxImageWidth = 1024
	maxImageBytes = 200 * 1024
	minImageBytes = 100
)

// PreparedImage is a chart ready for multimodal prompt embedding.
type PreparedImage struct {
	Base64   string
	MIMEType string
}

// PrepareImage loads a chart, resizes it to at most maxImageWidth wide, and
// re-encodes it under the size cap. GIFs and TIFs are converted to PNG since
// the vision API does not accept them.
func PrepareImage(path string) (*PreparedImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() < minImageBytes {
		return nil, fmt.Errorf("image too small (%d bytes), likely corrupt", info.Size())
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	format := imaging.PNG
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		format = imaging.JPEG
		mime = "image/jpeg"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	// Shrink until it fits; JPEG re-encode as a last resort for stubborn PNGs.
	for buf.Len() > maxImageBytes && img.Bounds().Dx() > 256 {
		img = imaging.Resize(img, img.Bounds().Dx()/2, 0, imaging.Lanczos)
		buf.Reset()
		if err := imaging.Encode(&buf, img, format); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
		}
	}
	if buf.Len() > maxImageBytes {
		buf.Reset()
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(70)); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
		}
		mime = "image/jpeg"
	}

	return &PreparedImage{
		Base64:   base64.StdEncoding.EncodeToString(buf.Bytes()),
		MIMEType: mime,
	}, nil
}
