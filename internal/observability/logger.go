package observability

import (
	"io"

	"github.com/danmuck/packetctl/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the runtime-profile logger, tagged with app, as the
// global logger.
func InitLogger(app string, out io.Writer) zerolog.Logger {
	cfg := logging.Resolve(logging.ProfileRuntime)
	logger := logging.New(out, cfg).With().Str("app", app).Logger()
	log.Logger = logger
	zerolog.SetGlobalLevel(cfg.Level)
	return logger
}
