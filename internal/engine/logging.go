package engine

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets up the standard logrus logger. An empty level
// selects fallback. Logs go to stderr so command output stays clean.
func ConfigureLogging(level string, fallback log.Level, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	if level == "" {
		log.SetLevel(fallback)
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}
