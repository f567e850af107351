package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/packetctl/internal/config"
	"github.com/danmuck/packetctl/internal/logging"
	"github.com/danmuck/packetctl/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.ConfigureRuntime()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "packetctl: %v\n", err)
		os.Exit(2)
	}
	cfg, err := resolveRunConfig(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid run config")
	}
	if err := run(cfg, opts.hex, os.Stdout); err != nil {
		log.Fatal().Err(err).Str("input", cfg.Input).Msg("packetctl failed")
	}
}

type report struct {
	VersionSum uint64         `json:"version_sum"`
	Value      uint64         `json:"value"`
	ValueText  string         `json:"value_str"`
	Tree       *packet.Packet `json:"tree,omitempty"`
}

func run(cfg config.RunConfig, inline string, out io.Writer) error {
	text := inline
	if text == "" {
		data, err := os.ReadFile(cfg.Input)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)

	decoder := packet.NewDecoder(cfg.Limits()).WithLogger(log.Logger)
	tree, err := decoder.DecodeHex(text)
	if err != nil {
		return err
	}
	value, err := tree.Eval()
	if err != nil {
		return err
	}

	rep := report{VersionSum: tree.VersionSum(), Value: value, ValueText: strconv.FormatUint(value, 10)}
	if cfg.PrintTree {
		rep.Tree = &tree
	}

	if cfg.Format == config.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	if _, err := fmt.Fprintf(out, "part1 = %d\npart2 = %d\n", rep.VersionSum, rep.Value); err != nil {
		return err
	}
	if rep.Tree != nil {
		_, err = fmt.Fprintf(out, "tree = %s\n", rep.Tree)
	}
	return err
}
