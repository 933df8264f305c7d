package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger used across the tool. verbose counts
// -v flags: 0 warn, 1 info, 2 debug, 3+ trace. Log output goes to stderr
// so reports on stdout stay machine-readable.
func Setup(verbose int) {
	zerolog.TimeFieldFormat = time.RFC3339
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).
		Level(Level(verbose)).
		With().
		Timestamp().
		Logger()
}

func Level(verbose int) zerolog.Level {
	switch {
	case verbose <= 0:
		return zerolog.WarnLevel
	case verbose == 1:
		return zerolog.InfoLevel
	case verbose == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
