package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"swellforecaster/config"
	"swellforecaster/swell"
)

// Agent is one data source. Run fetches whatever the source offers and saves
// artifacts into the bundle, returning one record per saved file. A failed
// agent never fails the run; its error is logged and the rest proceed.
type Agent struct {
	Name string
	Run  func(ctx context.Context, c *Context) ([]swell.Artifact, error)
}

// Run executes all enabled agents concurrently, writes the bundle metadata
// index and the latest-bundle pointer, and returns the bundle metadata.
func Run(ctx context.Context, cfg *config.Config, agents []Agent) (*swell.BundleMeta, error) {
	runID := swell.NewRunID(time.Now())
	c, err := NewContext(cfg, runID)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []swell.Artifact
	)

	for _, a := range agents {
		if !cfg.SourceEnabled(a.Name) {
			log.Printf("Source %s disabled, skipping", a.Name)
			continue
		}
		wg.Add(1)
		go func(a Agent) {
			defer wg.Done()
			arts, err := a.Run(ctx, c)
			if err != nil {
				// Partial success is fine; record the failure and move on.
				log.Printf("Warning: agent %s failed: %v", a.Name, err)
			}
			if len(arts) > 0 {
				mu.Lock()
				results = append(results, arts...)
				mu.Unlock()
				log.Printf("Agent %s collected %d artifacts", a.Name, len(arts))
			}
		}(a)
	}
	wg.Wait()

	meta := &swell.BundleMeta{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Results:   results,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle metadata: %w", err)
	}
	if _, err := c.Save("metadata.json", data); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(cfg.General.DataDir, "latest_bundle.txt"),
		[]byte(runID), 0o644); err != nil {
		log.Printf("Warning: failed to update latest bundle pointer: %v", err)
	}

	log.Printf("Bundle %s complete (%d files)", runID, len(results))
	return meta, nil
}

// Prune removes bundles older than maxAge from the data directory.
func Prune(dataDir string, maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read data dir for pruning: %v", err)
		}
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dataDir, e.Name())); err != nil {
			log.Printf("Warning: failed to prune bundle %s: %v", e.Name(), err)
		} else {
			log.Printf("Pruned old bundle %s", e.Name())
		}
	}
}

// LoadBundle locates a bundle directory and reads its metadata index. When
// bundleID is empty the latest bundle is used, resolved from the pointer file
// or by falling back to the newest directory by name.
func LoadBundle(dataDir, bundleID string) (*swell.BundleMeta, string, error) {
	if bundleID == "" {
		if data, err := os.ReadFile(filepath.Join(dataDir, "latest_bundle.txt")); err == nil {
			bundleID = strings.TrimSpace(string(data))
		}
	}
	if bundleID == "" {
		entries, err := os.ReadDir(dataDir)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read data dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() && e.Name() > bundleID {
				bundleID = e.Name()
			}
		}
		if bundleID == "" {
			return nil, "", fmt.Errorf("no bundles found in %s", dataDir)
		}
	}

	dir := filepath.Join(dataDir, bundleID)
	if _, err := os.Stat(dir); err != nil {
		return nil, "", fmt.Errorf("bundle not found: %s", dir)
	}

	meta := &swell.BundleMeta{RunID: bundleID}
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		log.Printf("Warning: bundle %s has no readable metadata.json: %v", bundleID, err)
		return meta, dir, nil
	}
	if err := json.Unmarshal(data, meta); err != nil {
		log.Printf("Warning: failed to parse metadata.json for %s: %v", bundleID, err)
	}
	return meta, dir, nil
}
