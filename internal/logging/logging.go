package logging

import (
	"log/slog"
	"os"
)

// Setup configures the default slog logger. format is "json" or "text"
// (anything else falls back to text).
func Setup(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
