package main

import (
	"flag"
	"log"

	"github.com/danmuck/packetctl/internal/config"
)

func main() {
	kind := flag.String("kind", "packetd", "config kind: packetd|packetctl")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	path := *input
	if !*validate {
		path = *output
	}
	if path == "" {
		path = defaultPath(*kind)
	}

	if *validate {
		switch *kind {
		case "packetd":
			if _, err := config.LoadServerConfig(path); err != nil {
				log.Fatal(err)
			}
		case "packetctl":
			if _, err := config.LoadRunConfig(path); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	if err := config.WriteTemplate(path, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, path)
}

func defaultPath(kind string) string {
	switch kind {
	case "packetd":
		return "cmd/packetd/config.toml"
	case "packetctl":
		return "cmd/packetctl/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}
