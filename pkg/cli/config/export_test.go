package config

import (
	"io"
	"log/slog"
)

// ConfigureWriter exposes logger configuration with a custom writer for tests
func (c *Logger) ConfigureWriter(w io.Writer) (*slog.Logger, error) {
	return c.configure(w)
}
