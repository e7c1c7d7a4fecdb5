package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"swellforecaster/agents"
	"swellforecaster/analyze"
	"swellforecaster/collect"
	"swellforecaster/config"
	"swellforecaster/curate"
	"swellforecaster/publish"
	"swellforecaster/render"
	"swellforecaster/server"
	"swellforecaster/swell"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	var (
		configPath  = flag.String("config", "config.ini", "path to the INI configuration file")
		bundleID    = flag.String("bundle-id", "", "analyze an existing bundle instead of collecting")
		collectOnly = flag.Bool("collect-only", false, "collect a bundle and exit without analyzing")
		analyzeOnly = flag.Bool("analyze-only", false, "analyze the latest (or --bundle-id) bundle without collecting")
		debug       = flag.Bool("debug", false, "verbose logging")
		cacheDays   = flag.Int("cache-days", 7, "prune bundles older than this many days")
		serve       = flag.Bool("serve", false, "run the HTTP server with scheduled collection")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := &application{cfg: cfg, cacheDays: *cacheDays}

	// Analysis needs the LLM key up front; collection-only runs do not.
	if !*collectOnly && !*serve && cfg.API.OpenAIKey == "" {
		log.Fatalf("no OpenAI API key configured (set OPENAI_KEY or [API] OPENAI_KEY)")
	}

	if *serve {
		srv := server.New(cfg, app.runFull)
		if err := srv.Start(); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	switch {
	case *collectOnly:
		meta, err := app.collect(ctx)
		if err != nil {
			log.Fatalf("collection failed: %v", err)
		}
		fmt.Println(meta.RunID)
	case *analyzeOnly:
		outputs, err := app.analyze(ctx, *bundleID)
		if err != nil {
			log.Fatalf("analysis failed: %v", err)
		}
		fmt.Println(outputs.Markdown)
	default:
		id, err := app.runFull(ctx)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}
		log.Printf("run complete, bundle %s", id)
	}
}

type application struct {
	cfg       *config.Config
	cacheDays int
}

func (app *application) collect(ctx context.Context) (*swell.BundleMeta, error) {
	collect.Prune(app.cfg.General.DataDir, time.Duration(app.cacheDays)*24*time.Hour)
	return collect.Run(ctx, app.cfg, agents.All())
}

func (app *application) analyze(ctx context.Context, bundleID string) (*render.Outputs, error) {
	meta, bundleDir, err := collect.LoadBundle(app.cfg.General.DataDir, bundleID)
	if err != nil {
		return nil, fmt.Errorf("loading bundle: %w", err)
	}
	return app.forecast(ctx, meta, bundleDir)
}

func (app *application) forecast(ctx context.Context, meta *swell.BundleMeta, bundleDir string) (*render.Outputs, error) {
	var embedder curate.EmbeddingsProvider
	if ce := curate.NewCohereEmbeddings(app.cfg.API.CohereKey); ce != nil {
		embedder = ce
	}
	sel, err := curate.New(app.cfg, embedder).Curate(bundleDir, meta)
	if err != nil {
		return nil, fmt.Errorf("curating bundle: %w", err)
	}

	var client analyze.ChatCompleter
	if app.cfg.API.OpenAIKey != "" {
		client = openai.NewClient(app.cfg.API.OpenAIKey)
	} else {
		// Serve mode tolerates a missing key; the fallback analyzer covers it.
		log.Printf("Warning: no OpenAI API key configured, forecasts use the fallback analyzer")
	}

	text, err := analyze.New(app.cfg, client).Analyze(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("generating forecast: %w", err)
	}

	outputs, err := render.Write(app.cfg.Forecast.OutputDir, text, time.Now())
	if err != nil {
		return nil, fmt.Errorf("writing forecast: %w", err)
	}
	app.publish(ctx, meta.RunID, outputs)
	return outputs, nil
}

// publish pushes the forecast to any configured sinks. Failures are warnings;
// the local files are the source of truth.
func (app *application) publish(ctx context.Context, bundleID string, outputs *render.Outputs) {
	uploader, err := publish.NewS3Uploader(ctx, app.cfg.Publish)
	if err != nil {
		log.Printf("Warning: S3 uploader unavailable: %v", err)
	} else if uploader != nil {
		if err := uploader.Upload(ctx, outputs); err != nil {
			log.Printf("Warning: S3 upload failed: %v", err)
		}
	}

	pub, err := publish.NewKafkaPublisher(app.cfg.Publish)
	if err != nil {
		log.Printf("Warning: Kafka publisher unavailable: %v", err)
		return
	}
	if pub == nil {
		return
	}
	defer pub.Close()
	event := publish.ForecastEvent{
		BundleID:    bundleID,
		MarkdownURL: filepath.Base(outputs.Markdown),
		HTMLURL:     filepath.Base(outputs.HTML),
		GeneratedAt: time.Now().UTC(),
	}
	if outputs.PDF != "" {
		event.PDFURL = filepath.Base(outputs.PDF)
	}
	if err := pub.Publish(event); err != nil {
		log.Printf("Warning: Kafka publish failed: %v", err)
	}
}

func (app *application) runFull(ctx context.Context) (string, error) {
	meta, err := app.collect(ctx)
	if err != nil {
		return "", fmt.Errorf("collecting bundle: %w", err)
	}
	bundleDir := filepath.Join(app.cfg.General.DataDir, meta.RunID)
	if _, err := app.forecast(ctx, meta, bundleDir); err != nil {
		return meta.RunID, err
	}
	return meta.RunID, nil
}
