package swell

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Artifact describes one fetched file inside a bundle
type Artifact struct {
	Source      string    `json:"source"`
	Type        string    `json:"type"`
	Subtype     string    `json:"subtype,omitempty"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url,omitempty"`
	Buoy        string    `json:"buoy,omitempty"`
	Station     string    `json:"station,omitempty"`
	Priority    int       `json:"priority"`
	Timestamp   time.Time `json:"timestamp"`
	NorthFacing bool      `json:"north_facing,omitempty"`
	SouthFacing bool      `json:"south_facing,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// BundleMeta is the metadata.json index written once per collection run
type BundleMeta struct {
	RunID     string     `json:"run_id"`
	Timestamp time.Time  `json:"timestamp"`
	Results   []Artifact `json:"results"`
}

// NewRunID creates a bundle identifier from a random hash and the current unix time.
// Bundles sort chronologically on the trailing component.
func NewRunID(now time.Time) string {
	hash := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%d", hash, now.Unix())
}

// FingerprintURL creates a short stable ID from a URL, used as a cache key
func FingerprintURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

// HST is the fixed Hawaii timezone used for forecast timestamps
var HST = time.FixedZone("HST", -10*60*60)
