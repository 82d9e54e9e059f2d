// Package logging configures the process-wide zerolog logger. Unlike the
// teacher, which always writes to a fixed file, this controller defaults
// to stdout — the backup-button's append-only sink (wwpumpe.log, spec
// §6) is a separate, narrower writer handled by backuplog.go, written
// only on an acted-upon button press, never by the general logger.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Init(level zerolog.Level) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	if level == zerolog.DebugLevel {
		log.Debug().Msg("Log level set to DEBUG")
	}
}
