package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

// String returns the trimmed value of key, or def when unset or blank.
func String(key, def string, log *logger.Logger) string {
	raw, ok := lookup(key)
	if !ok {
		debug(log, key, "Environment variable not found, using default", "default", def)
		return def
	}
	debug(log, key, "Environment variable found, using environment", "value", raw)
	return raw
}

func Int(key string, def int, log *logger.Logger) int {
	raw, ok := lookup(key)
	if !ok {
		debug(log, key, "Environment variable not found, using default", "default", def)
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		debug(log, key, "Environment variable could not be parsed as int, using default", "provided", raw, "default", def, "error", err)
		return def
	}
	return i
}

func Bool(key string, def bool, log *logger.Logger) bool {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	debug(log, key, "Environment variable could not be parsed as bool, using default", "provided", raw, "default", def)
	return def
}

func Float(key string, def float64, log *logger.Logger) float64 {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		debug(log, key, "Environment variable could not be parsed as float, using default", "provided", raw, "default", def, "error", err)
		return def
	}
	return f
}

// Duration accepts Go duration strings ("90s", "10m") or a bare number of seconds.
func Duration(key string, def time.Duration, log *logger.Logger) time.Duration {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	debug(log, key, "Environment variable could not be parsed as duration, using default", "provided", raw, "default", def)
	return def
}

// List splits a comma separated value, dropping blanks.
func List(key string, def []string, log *logger.Logger) []string {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	debug(log, key, "Environment variable found, using environment", "value", out)
	return out
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func debug(log *logger.Logger, key, msg string, kv ...interface{}) {
	if log == nil {
		return
	}
	log.With("env_var", key).Debug(msg, kv...)
}
