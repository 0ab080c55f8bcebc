package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sakshamg567/chase/logger"
)

type Config struct {
	Port           string
	AllowedOrigins string
	AdminJWTSecret []byte
	LogLevel       string
	InboundRate    float64
	InboundBurst   int
}

const (
	defaultPort         = "3001"
	defaultOrigins      = "*"
	defaultLogLevel     = "info"
	defaultInboundRate  = 240
	defaultInboundBurst = 480
)

// Load reads the process environment. Missing or malformed values fall back to defaults.
func Load() Config {
	return FromLookup(os.LookupEnv)
}

func FromLookup(lookup func(string) (string, bool)) Config {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Port:           get("PORT", defaultPort),
		AllowedOrigins: get("ALLOWED_ORIGINS", defaultOrigins),
		AdminJWTSecret: []byte(get("ADMIN_JWT_SECRET", "")),
		LogLevel:       get("LOG_LEVEL", defaultLogLevel),
		InboundRate:    defaultInboundRate,
		InboundBurst:   defaultInboundBurst,
	}

	if raw := get("INBOUND_RATE", ""); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			cfg.InboundRate = v
		} else {
			logger.Warn("config: invalid INBOUND_RATE %q, using %d", raw, defaultInboundRate)
		}
	}
	if raw := get("INBOUND_BURST", ""); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.InboundBurst = v
		} else {
			logger.Warn("config: invalid INBOUND_BURST %q, using %d", raw, defaultInboundBurst)
		}
	}
	return cfg
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) AdminAuthEnabled() bool {
	return len(c.AdminJWTSecret) > 0
}
