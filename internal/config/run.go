package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/packetctl/internal/protocol/packet"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// RunConfig drives one packetctl invocation.
type RunConfig struct {
	Input        string
	MaxDepth     int
	MaxInputBits int
	PrintTree    bool
	Format       string
}

// runFileConfig is the packetctl.toml key mapping.
type runFileConfig struct {
	Input        string `toml:"input"`
	MaxDepth     int    `toml:"max_depth"`
	MaxInputBits int    `toml:"max_input_bits"`
	PrintTree    bool   `toml:"print_tree"`
	Format       string `toml:"format"`
}

func DefaultRunConfig() RunConfig {
	limits := packet.DefaultLimits()
	return RunConfig{
		Input:        "inputs/day16.txt",
		MaxDepth:     limits.MaxDepth,
		MaxInputBits: limits.MaxInputBits,
		Format:       FormatText,
	}
}

func (c RunConfig) Limits() packet.Limits {
	return packet.Limits{MaxDepth: c.MaxDepth, MaxInputBits: c.MaxInputBits}
}

// LoadRunConfig overlays the keys present in path onto DefaultRunConfig.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()

	var raw runFileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return RunConfig{}, fmt.Errorf("load run config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return RunConfig{}, fmt.Errorf("run config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("input") {
		cfg.Input = strings.TrimSpace(raw.Input)
	}
	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("max_input_bits") {
		cfg.MaxInputBits = raw.MaxInputBits
	}
	if meta.IsDefined("print_tree") {
		cfg.PrintTree = raw.PrintTree
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}

	if err := ValidateRunConfig(cfg); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func ValidateRunConfig(cfg RunConfig) error {
	if err := validateLimits(cfg.MaxDepth, cfg.MaxInputBits); err != nil {
		return fmt.Errorf("run config: %w", err)
	}
	switch cfg.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("run config: unknown format %q", cfg.Format)
	}
	return nil
}
