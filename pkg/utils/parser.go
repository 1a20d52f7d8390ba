// Package utils holds small HTTP, parsing and upload helpers shared by the
// handlers and workers.
package utils

import (
	"regexp"
	"strconv"
	"strings"

	"glow/pkg/logger"
)

var sizeRegex = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]*)$`)

var unitMultipliers = map[string]int64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// SizeToBytes parses "8MB", "1 GB" or "512kb" into bytes (1KB = 1024).
// Invalid input logs a warning and yields defaultValue.
func SizeToBytes(sizeStr string, defaultValue int64) int64 {
	rawStr := strings.TrimSpace(strings.ToUpper(sizeStr))
	if rawStr == "" {
		return defaultValue
	}

	matches := sizeRegex.FindStringSubmatch(rawStr)
	if len(matches) != 3 {
		logger.LogWarn("Invalid size format '%s', using default.", sizeStr)
		return defaultValue
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil || value <= 0 {
		logger.LogWarn("Invalid numeric value in '%s', using default.", sizeStr)
		return defaultValue
	}

	unit := matches[2]
	multiplier, exists := unitMultipliers[unit]
	if !exists {
		logger.LogWarn("Unsupported unit '%s' in '%s', using default.", unit, sizeStr)
		return defaultValue
	}

	return value * multiplier
}
