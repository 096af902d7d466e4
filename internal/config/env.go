package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// LoadEnvFiles loads .env and .env.local from the working directory when
// present. Variables already set in the process environment win.
func LoadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if err := godotenv.Load(name); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("Failed to load env file", logfields.Path(name), logfields.Error(err))
			}
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(name))
	}
}
