package utils

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"glow/pkg/logger"
)

// LoadEnv reads .env from the working directory into the process
// environment. Variables already set win. A missing file is fine.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		switch {
		case err == nil:
			logger.LogDebug("Loaded environment from %s", f)
		case errors.Is(err, fs.ErrNotExist):
		default:
			logger.LogWarn("Could not read %s: %v", f, err)
		}
	}
}
