package config

import (
	"strconv"
	"strings"

	"quotes-cli/internal/features"
)

// ApplyKVOverrides applies free-form -c key=value overrides. Unknown keys and
// malformed values are skipped.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "base_url", "base-url", "url":
			cfg.BaseURL = val
		case "stream_path", "stream-path", "path":
			cfg.StreamPath = val
		case "title":
			cfg.Title = val
		case "log_level", "log-level":
			cfg.LogLevel = val
		default:
			name, ok := strings.CutPrefix(key, "features.")
			if !ok || !features.IsKnown(name) {
				continue
			}
			enabled, err := strconv.ParseBool(val)
			if err != nil {
				continue
			}
			if cfg.Features == nil {
				cfg.Features = map[string]bool{}
			}
			cfg.Features[name] = enabled
		}
	}
	return cfg
}
