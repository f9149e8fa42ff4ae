package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the game server.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Game   GameConfig   `yaml:"game"`
	Lobby  LobbyConfig  `yaml:"lobby"`
	Dev    DevConfig    `yaml:"dev"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// GameConfig holds tick cadence and map-generation tuning.
type GameConfig struct {
	TickInterval       time.Duration `yaml:"tick_interval"`
	MinGridSize        int           `yaml:"min_grid_size"`
	GridSizeMaxDelta   int           `yaml:"grid_size_max_delta"`
	MinGeneralDistance int           `yaml:"min_general_distance"`
}

// LobbyConfig controls how many endpoints a pending game accumulates
// before it is promoted and started.
type LobbyConfig struct {
	Size int `yaml:"size"`
}

// DevConfig gates the force-tick/debug-state routes (spec §7).
type DevConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets the environment override the listen address
// without touching the config file, the same "file as base, env as
// override" idiom the originating project applies to its connection
// strings.
func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("GAME_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
}

// Default returns the configuration used whenever no config file is
// supplied, or the supplied one fails to load.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8080",
		},
		Game: GameConfig{
			TickInterval:       1 * time.Second,
			MinGridSize:        17,
			GridSizeMaxDelta:   6,
			MinGeneralDistance: 10,
		},
		Lobby: LobbyConfig{
			Size: 2,
		},
		Dev: DevConfig{
			Enabled: false,
		},
	}
	applyEnvOverrides(cfg)
	return cfg
}
