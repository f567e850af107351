package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "packetd":
		return serverTemplate, nil
	case "packetctl":
		return runTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serverTemplate = `id = "packetd"
addr = ":9200"
cors_origins = ["http://localhost:3000"]
max_depth = 256
max_input_bits = 1048576
`

const runTemplate = `input = "inputs/day16.txt"
max_depth = 256
max_input_bits = 1048576
print_tree = false
format = "text"
`
