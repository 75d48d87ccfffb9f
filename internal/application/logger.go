package application

import (
	"log/slog"
	"os"
)

// package-level logger used by the service and workspaces; replaced by the
// server at startup through SetLogger.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the application package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
