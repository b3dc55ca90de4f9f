// Package config loads arenad's configuration: a JSON config file that
// falls back to a built-in default, then a handful of env-var
// overrides. Grounded on the teacher's cmd/main.go loadConfig/
// applyEnvOverrides pair — same default-JSON-as-a-string, os.ExpandEnv,
// then explicit per-field env overrides, generalized from the
// websocket/NATS/auth/metrics sections to arena/NATS/ops sections (auth
// is dropped; spec's Non-goals exclude authentication entirely).
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const defaultConfig = `{
  "server": {
    "addr": ":56041",
    "listenBacklog": 5
  },
  "ops": {
    "enabled": true,
    "addr": ":9090"
  },
  "nats": {
    "url": "",
    "maxReconnects": 5,
    "reconnectWaitMs": 2000
  },
  "rngSeed": 0
}`

// ServerConfig holds the raw TCP listener settings.
type ServerConfig struct {
	Addr string `json:"addr"`
	// ListenBacklog is informational only: Go's net package does not
	// expose a backlog knob on net.Listen (the kernel default applies),
	// but the field is kept to document the value spec §6 names.
	ListenBacklog int `json:"listenBacklog"`
}

// OpsConfig controls the /healthz and /metrics HTTP side-channel.
type OpsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// NATSConfig controls the optional event bus. URL empty means disabled.
type NATSConfig struct {
	URL             string `json:"url"`
	MaxReconnects   int    `json:"maxReconnects"`
	ReconnectWaitMs int    `json:"reconnectWaitMs"`
}

// Config is the full, resolved configuration.
type Config struct {
	Server  ServerConfig `json:"server"`
	Ops     OpsConfig    `json:"ops"`
	NATS    NATSConfig   `json:"nats"`
	RNGSeed int64        `json:"rngSeed"`
}

// Load reads configPath if non-empty, otherwise starts from the built-in
// default, expands ${VAR} references via the environment, then applies
// the explicit overrides in applyEnvOverrides.
func Load(configPath string) (*Config, error) {
	var data []byte
	var err error

	if configPath != "" {
		data, err = os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	} else {
		data = []byte(defaultConfig)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("ARENA_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if addr := os.Getenv("ARENA_OPS_ADDR"); addr != "" {
		cfg.Ops.Addr = addr
	}
	if url := os.Getenv("ARENA_NATS_URL"); url != "" {
		cfg.NATS.URL = url
	}
}
