package ratelimit

import (
	"strings"
	"time"
)

// Tier pairs a limiter with a name for bucket keys and headers.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Config holds the rate limit tiers. All keys are client-IP scoped: the app
// has a single anonymous audience plus one instructor, so per-user buckets
// would not separate anything.
type Config struct {
	// Load covers the tree-replacement endpoints. Each one fans out into
	// GitHub API calls, so it is the strictest tier.
	Load Tier
	// Auth covers the instructor login endpoint (password guessing).
	Auth Tier
	// Write covers content edits and lens pinning.
	Write Tier
	// Read covers everything else.
	Read Tier
}

// DefaultConfig creates a Config with the default limits:
//   - Load: 10 req/min, burst 3
//   - Auth: 5 req/min, burst 5
//   - Write: 60 req/min, burst 10
//   - Read: 600 req/min, burst 100.
func DefaultConfig() *Config {
	return &Config{
		Load:  Tier{Name: "load", Limiter: NewLimiter(10, time.Minute, 3)},
		Auth:  Tier{Name: "auth", Limiter: NewLimiter(5, time.Minute, 5)},
		Write: Tier{Name: "write", Limiter: NewLimiter(60, time.Minute, 10)},
		Read:  Tier{Name: "read", Limiter: NewLimiter(600, time.Minute, 100)},
	}
}

// Match returns the tier for a request, or nil for paths that should not be
// rate limited.
func (c *Config) Match(method, path string) *Tier {
	if path == "/api/health" {
		return nil
	}
	if method == "POST" && strings.HasPrefix(path, "/api/load/") {
		return &c.Load
	}
	if method == "POST" && path == "/api/auth/login" {
		return &c.Auth
	}
	if method == "PUT" || method == "POST" || method == "DELETE" {
		return &c.Write
	}
	if method == "GET" {
		return &c.Read
	}
	return nil
}

// Close stops all limiter cleanup goroutines.
func (c *Config) Close() {
	c.Load.Limiter.Close()
	c.Auth.Limiter.Close()
	c.Write.Limiter.Close()
	c.Read.Limiter.Close()
}

// BuildKey creates a rate limit bucket key from client IP and tier name.
func BuildKey(ip, tierName string) string {
	return "ip:" + ip + ":" + tierName
}
