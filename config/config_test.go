package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleINI = `[API]
OPENAI_KEY = sk-test
WINDY_KEY = windy-test

[GENERAL]
data_dir = /tmp/surf_data
timeout = 45
max_retries = 5

[SOURCES]
enable_buoys = true
enable_stormglass = false

[FORECAST]
output_dir = /tmp/forecasts
south_swell_emphasis = True
max_images = 6

[PUBLISH]
s3_bucket = my-forecasts
kafka_brokers = broker1:9092, broker2:9092

[SSL_EXCEPTIONS]
disable_verification = metservice.com, example.org
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleINI))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.OpenAIKey != "sk-test" {
		t.Errorf("OpenAIKey = %q", cfg.API.OpenAIKey)
	}
	if cfg.General.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.General.Timeout)
	}
	if cfg.General.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.General.MaxRetries)
	}
	if cfg.Forecast.SouthEmphasis != "true" {
		t.Errorf("SouthEmphasis = %q, want lowercased", cfg.Forecast.SouthEmphasis)
	}
	if cfg.Forecast.MaxImages != 6 {
		t.Errorf("MaxImages = %d", cfg.Forecast.MaxImages)
	}
	if cfg.Publish.S3Bucket != "my-forecasts" {
		t.Errorf("S3Bucket = %q", cfg.Publish.S3Bucket)
	}
	if len(cfg.Publish.KafkaBrokers) != 2 || cfg.Publish.KafkaBrokers[1] != "broker2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.Publish.KafkaBrokers)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[GENERAL]\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.General.DataDir != "pacific_data" {
		t.Errorf("DataDir default = %q", cfg.General.DataDir)
	}
	if cfg.Forecast.MaxImages != 8 || cfg.Forecast.MaxBuoys != 5 {
		t.Errorf("forecast caps = %d/%d", cfg.Forecast.MaxImages, cfg.Forecast.MaxBuoys)
	}
	if cfg.Forecast.NorthEmphasis != "auto" {
		t.Errorf("NorthEmphasis default = %q", cfg.Forecast.NorthEmphasis)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr default = %q", cfg.Server.Addr)
	}
}

func TestSourceEnabled(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleINI))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SourceEnabled("buoys") {
		t.Error("buoys should be enabled")
	}
	if cfg.SourceEnabled("stormglass") {
		t.Error("stormglass should be disabled")
	}
	if !cfg.SourceEnabled("never_mentioned") {
		t.Error("unknown sources default to enabled")
	}
}

func TestSkipVerify(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleINI))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SkipVerify("metservice.com") {
		t.Error("exact host should match")
	}
	if !cfg.SkipVerify("www.metservice.com") {
		t.Error("subdomain should match")
	}
	if cfg.SkipVerify("notmetservice.com") {
		t.Error("suffix without dot boundary should not match")
	}
	if cfg.SkipVerify("ocean.weather.gov") {
		t.Error("unlisted host should not match")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("OPENAI_KEY", "sk-env")
	cfg, err := Load(writeConfig(t, sampleINI))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.OpenAIKey != "sk-env" {
		t.Errorf("env should override ini, got %q", cfg.API.OpenAIKey)
	}
}

func TestTimeoutFloor(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[GENERAL]\ntimeout = 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.General.Timeout != 10*time.Second {
		t.Errorf("short timeout should be raised to 10s, got %v", cfg.General.Timeout)
	}
}
