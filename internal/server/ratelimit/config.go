package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route. A Path ending in "/" matches every path below it and
// those paths share one bucket per client.
type Rule struct {
	Path   string
	Method string
	Limit  int           // requests per Window; zero means unlimited
	Window time.Duration
	Burst  int // bucket capacity, defaults to Limit
}

func (r Rule) capacity() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

func (r Rule) key(path string) string {
	if r.Path == "" {
		return path
	}
	return r.Path
}

// Config holds rate limiting settings.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Allowlist       map[string]bool
	Denylist        map[string]bool
	Rules           []Rule
}

// DefaultConfig limits every client to 600 requests a minute, with tighter
// rules on routes that call the model or parse uploads.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Allowlist:       map[string]bool{},
		Denylist:        map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the built-in per-route rules.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/health", Method: "GET"},
		{Path: "/v1/emails", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/v1/emails/stream", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/v1/documents", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/v1/drafts/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// ruleFor returns the exact rule for path, else the longest matching prefix
// rule, else the default limit.
func (c *Config) ruleFor(path, method string) Rule {
	var best *Rule
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return *r
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			if best == nil || len(r.Path) > len(best.Path) {
				best = r
			}
		}
	}
	if best != nil {
		return *best
	}
	return Rule{Limit: c.DefaultLimit, Window: c.DefaultWindow}
}

// LoadConfig reads overrides from RATE_LIMIT_* environment variables on top of
// DefaultConfig.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool("RATE_LIMIT_ENABLED", cfg.Enabled)
	cfg.DefaultLimit = envInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = envDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = envDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Allowlist = ipSet(os.Getenv("RATE_LIMIT_ALLOWLIST"))
	cfg.Denylist = ipSet(os.Getenv("RATE_LIMIT_DENYLIST"))
	return cfg
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func ipSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
