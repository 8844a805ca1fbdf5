package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"prxwallet/internal/domain/model"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PRXWALLET_MODE", "demo")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataMode() != model.DemoMode || cfg.Server.Port != 8080 || cfg.Cache.Driver != "local" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.JournalEnabled() {
		t.Error("journal enabled without a host")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
mode: live
backend:
  url: https://api.example.com
  timeout: 5s
server:
  port: 9000
cache:
  ttl: 1m
kafka:
  brokers: [a:9092]
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PRXWALLET_SERVER_PORT", "9100")
	t.Setenv("PRXWALLET_KAFKA_BROKERS", "b:9092,c:9092")
	t.Setenv("PRXWALLET_STORE_PASSPHRASE", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.URL != "https://api.example.com" || cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, env should win", cfg.Server.Port)
	}
	if cfg.Cache.TTL != time.Minute || cfg.Logging.Level != "debug" {
		t.Errorf("cache=%+v logging=%+v", cfg.Cache, cfg.Logging)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "c:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Store.Passphrase != "secret" {
		t.Error("passphrase not read from env")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("live mode without a backend url should fail")
	}
	cfg.Mode = "demo"
	if err := cfg.Validate(); err != nil {
		t.Errorf("demo default: %v", err)
	}
	cfg.Cache.Driver = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown cache driver accepted")
	}
}
