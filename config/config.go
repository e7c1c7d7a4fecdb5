package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/ini.v1"
)

// API holds keys and credentials for external services.
// Every key can also be supplied via environment variable (OPENAI_KEY etc.),
// which takes precedence over the INI value.
type API struct {
	OpenAIKey        string
	CohereKey        string
	WindyKey         string
	ECMWFKey         string
	StormglassKey    string
	SurflineEmail    string
	SurflinePassword string
}

// General holds collection-wide settings
type General struct {
	DataDir    string        `validate:"required"`
	UserAgent  string        `validate:"required"`
	Timeout    time.Duration `validate:"min=10s,max=5m"`
	MaxRetries int           `validate:"min=1,max=10"`
	Throttle   time.Duration
	Model      string
	RedisAddr  string
	RedisCache bool
	CacheTTL   time.Duration
}

// Forecast holds analysis and output settings
type Forecast struct {
	OutputDir     string `validate:"required"`
	NorthEmphasis string `validate:"oneof=auto true false"`
	SouthEmphasis string `validate:"oneof=auto true false"`
	PromptsFile   string
	SizeBudget    int `validate:"min=1024"`
	MaxImages     int `validate:"min=0,max=20"`
	MaxBuoys      int `validate:"min=0,max=20"`
	PDF           bool
}

// Publish holds optional downstream publishing settings.
// Both S3 and Kafka are disabled unless configured.
type Publish struct {
	S3Bucket     string
	S3Prefix     string
	S3Region     string
	KafkaBrokers []string
	KafkaTopic   string
}

// Server holds serve-mode settings
type Server struct {
	Addr            string
	CollectEveryHrs int
}

// Config is the full parsed configuration
type Config struct {
	API           API
	General       General
	Sources       map[string]bool
	Forecast      Forecast
	Publish       Publish
	Server        Server
	SSLExceptions []string
}

// SourceEnabled reports whether a source agent is enabled. Unknown sources
// default to enabled so a stale config does not silently drop a collector.
func (c *Config) SourceEnabled(name string) bool {
	if v, ok := c.Sources[name]; ok {
		return v
	}
	return true
}

// SkipVerify reports whether SSL verification should be disabled for host.
// Parent domains match subdomains (pacioos.hawaii.edu covers www.pacioos.hawaii.edu).
func (c *Config) SkipVerify(host string) bool {
	host = strings.ToLower(host)
	for _, d := range c.SSLExceptions {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Load reads the INI config file, applies environment overrides and defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	cfg := &Config{Sources: map[string]bool{}}

	api := f.Section("API")
	cfg.API = API{
		OpenAIKey:        api.Key("OPENAI_KEY").String(),
		CohereKey:        api.Key("COHERE_KEY").String(),
		WindyKey:         api.Key("WINDY_KEY").String(),
		ECMWFKey:         api.Key("ECMWF_KEY").String(),
		StormglassKey:    api.Key("STORMGLASS_KEY").String(),
		SurflineEmail:    api.Key("SURFLINE_EMAIL").String(),
		SurflinePassword: api.Key("SURFLINE_PASSWORD").String(),
	}
	applyEnvOverrides(&cfg.API)

	gen := f.Section("GENERAL")
	cfg.General = General{
		DataDir:    gen.Key("data_dir").MustString("pacific_data"),
		UserAgent:  gen.Key("user_agent").MustString("SwellForecaster/1.0"),
		Timeout:    time.Duration(gen.Key("timeout").MustInt(60)) * time.Second,
		MaxRetries: gen.Key("max_retries").MustInt(3),
		Throttle:   time.Duration(gen.Key("windy_throttle_seconds").MustInt(1)) * time.Second,
		Model:      gen.Key("model").MustString("gpt-4.1"),
		RedisAddr:  gen.Key("redis_addr").String(),
		RedisCache: gen.Key("redis_cache").MustBool(false),
		CacheTTL:   time.Duration(gen.Key("cache_ttl_hours").MustInt(6)) * time.Hour,
	}
	if cfg.General.Timeout < 10*time.Second {
		log.Printf("Warning: timeout %s is very short, using 10s", cfg.General.Timeout)
		cfg.General.Timeout = 10 * time.Second
	}

	for _, k := range f.Section("SOURCES").Keys() {
		cfg.Sources[strings.TrimPrefix(k.Name(), "enable_")] = k.MustBool(true)
	}

	fc := f.Section("FORECAST")
	cfg.Forecast = Forecast{
		OutputDir:     fc.Key("output_dir").MustString("forecasts"),
		NorthEmphasis: strings.ToLower(fc.Key("north_swell_emphasis").MustString("auto")),
		SouthEmphasis: strings.ToLower(fc.Key("south_swell_emphasis").MustString("auto")),
		PromptsFile:   fc.Key("prompts_file").MustString("prompts.json"),
		SizeBudget:    fc.Key("size_budget_bytes").MustInt(2 << 20),
		MaxImages:     fc.Key("max_images").MustInt(8),
		MaxBuoys:      fc.Key("max_buoys").MustInt(5),
		PDF:           fc.Key("pdf").MustBool(true),
	}

	pub := f.Section("PUBLISH")
	cfg.Publish = Publish{
		S3Bucket: pub.Key("s3_bucket").String(),
		S3Prefix: pub.Key("s3_prefix").MustString("forecasts"),
		S3Region: pub.Key("s3_region").String(),
	}
	if brokers := pub.Key("kafka_brokers").String(); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Publish.KafkaBrokers = append(cfg.Publish.KafkaBrokers, b)
			}
		}
	}
	cfg.Publish.KafkaTopic = pub.Key("kafka_topic").MustString("swellforecaster.events")

	srv := f.Section("SERVER")
	cfg.Server = Server{
		Addr:            srv.Key("addr").MustString(":8080"),
		CollectEveryHrs: srv.Key("collect_every_hours").MustInt(6),
	}

	if raw := f.Section("SSL_EXCEPTIONS").Key("disable_verification").String(); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(strings.ToLower(d)); d != "" {
				cfg.SSLExceptions = append(cfg.SSLExceptions, d)
			}
		}
	}

	v := validator.New()
	if err := v.Struct(cfg.General); err != nil {
		return nil, fmt.Errorf("invalid [GENERAL] section: %w", err)
	}
	if err := v.Struct(cfg.Forecast); err != nil {
		return nil, fmt.Errorf("invalid [FORECAST] section: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides lets environment variables win over INI values so keys can
// live in a .env file instead of the checked-in config.
func applyEnvOverrides(a *API) {
	override := func(dst *string, names ...string) {
		for _, n := range names {
			if v := os.Getenv(n); v != "" {
				*dst = v
				return
			}
		}
	}
	override(&a.OpenAIKey, "OPENAI_KEY", "OPENAI_API_KEY")
	override(&a.CohereKey, "COHERE_KEY", "COHERE_API_KEY")
	override(&a.WindyKey, "WINDY_KEY")
	override(&a.ECMWFKey, "ECMWF_KEY")
	override(&a.StormglassKey, "STORMGLASS_KEY")
	override(&a.SurflineEmail, "SURFLINE_EMAIL")
	override(&a.SurflinePassword, "SURFLINE_PASSWORD")
}
