package config

import "time"

// RateLimitConfig parameterises the Redis token bucket placed in front of
// the credential and upload endpoints.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip, route or ip_route
	Prefix         string
}

func loadRateLimitConfig(src source) RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        src.boolean("RATE_LIMIT_ENABLED", true),
		Capacity:       src.integer("RATE_LIMIT_CAPACITY", 20),
		RefillTokens:   src.integer("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: src.dur("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
		TTL:            src.dur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    src.str("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         src.str("RATE_LIMIT_PREFIX", "rl"),
	}
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	// keep buckets alive for at least a few refill periods
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	return rl
}
