package main

import (
	"flag"
	"os"

	"github.com/danmuck/packetctl/internal/config"
	"github.com/danmuck/packetctl/internal/observability"
	"github.com/danmuck/packetctl/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "cmd/packetd/config.toml", "packetd.toml path")
	flag.Parse()

	observability.InitLogger("packetd", os.Stdout)
	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load packetd config")
	}
	log.Info().Str("path", *configPath).Msg("loaded packetd config")

	srv := server.Appear(cfg.ID, cfg.Addr, cfg.CorsOrigins, cfg.Limits())
	log.Info().
		Str("id", srv.ID).
		Str("addr", srv.Addr).
		Int("max_depth", cfg.MaxDepth).
		Int("max_input_bits", cfg.MaxInputBits).
		Msg("packetd started")
	if err := srv.Serve(); err != nil {
		log.Fatal().Err(err).Msg("packetd stopped")
	}
}
