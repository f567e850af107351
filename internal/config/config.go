package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/packetctl/internal/protocol/packet"
	"github.com/pelletier/go-toml/v2"
)

// ServerConfig is the packetd.toml contract.
type ServerConfig struct {
	ID           string   `toml:"id"`
	Addr         string   `toml:"addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	MaxDepth     int      `toml:"max_depth"`
	MaxInputBits int      `toml:"max_input_bits"`
}

func (c ServerConfig) Limits() packet.Limits {
	return packet.Limits{MaxDepth: c.MaxDepth, MaxInputBits: c.MaxInputBits}
}

func LoadServerConfig(path string) (ServerConfig, error) {
	var cfg ServerConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	limits := packet.DefaultLimits()
	if cfg.ID == "" {
		cfg.ID = "packetd"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9200"
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = limits.MaxDepth
	}
	if cfg.MaxInputBits == 0 {
		cfg.MaxInputBits = limits.MaxInputBits
	}
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("server config missing id")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if err := validateLimits(cfg.MaxDepth, cfg.MaxInputBits); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	for i, origin := range cfg.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}

func validateLimits(maxDepth, maxInputBits int) error {
	if maxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", maxDepth)
	}
	if maxInputBits < packet.HeaderBits {
		return fmt.Errorf("max_input_bits must be at least %d, got %d", packet.HeaderBits, maxInputBits)
	}
	return nil
}
