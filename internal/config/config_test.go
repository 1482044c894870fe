package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mmcdole/datapass/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if cfg.Refresh.MinInterval != 15*time.Second {
		t.Errorf("min interval = %v", cfg.Refresh.MinInterval)
	}
	if cfg.Animation.HalfDuration != time.Second || cfg.Animation.FramePeriod != 10*time.Millisecond {
		t.Errorf("animation = %+v", cfg.Animation)
	}
	if cfg.Store.Driver != config.StoreBolt {
		t.Errorf("driver = %s", cfg.Store.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
refresh:
  min_interval: 30s
carrier:
  operator: congstar
  multi_sim: true
store:
  driver: sqlite
  path: /tmp/dp.db
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Refresh.MinInterval != 30*time.Second {
		t.Errorf("min interval = %v", cfg.Refresh.MinInterval)
	}
	if cfg.Refresh.SettleDelay != 3*time.Second {
		t.Errorf("settle delay default lost: %v", cfg.Refresh.SettleDelay)
	}
	if cfg.Carrier.Operator != "congstar" || !cfg.Carrier.MultiSIM {
		t.Errorf("carrier = %+v", cfg.Carrier)
	}
	if cfg.Store.Driver != config.StoreSQLite || cfg.Store.Path != "/tmp/dp.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  addr: 127.0.0.1:1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATAPASS_CARRIER_OPERATOR", "Telekom.de")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Carrier.Operator != "Telekom.de" {
		t.Errorf("operator = %q", cfg.Carrier.Operator)
	}
	if cfg.API.Addr != "127.0.0.1:1" {
		t.Errorf("addr = %q", cfg.API.Addr)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Refresh.MinInterval != 15*time.Second {
		t.Errorf("min interval = %v", cfg.Refresh.MinInterval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero interval", func(c *config.Config) { c.Refresh.MinInterval = 0 }},
		{"negative settle", func(c *config.Config) { c.Refresh.SettleDelay = -time.Second }},
		{"zero frame", func(c *config.Config) { c.Animation.FramePeriod = 0 }},
		{"bad driver", func(c *config.Config) { c.Store.Driver = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveCarrier(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("config dir comes from APPDATA")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.DefaultConfig()
	cfg.Carrier.Operator = "Telekom.de"
	cfg.Carrier.MultiSIM = true
	if err := config.SaveCarrier(cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := config.LoadFile(filepath.Join(home, ".config", "datapass", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Carrier.Operator != "Telekom.de" || !loaded.Carrier.MultiSIM {
		t.Errorf("carrier = %+v", loaded.Carrier)
	}
}
