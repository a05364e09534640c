package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DenyReason classifies why the guard rejected a request.
type DenyReason string

const (
	DenyBot       DenyReason = "bot"
	DenyShield    DenyReason = "shield"
	DenyRateLimit DenyReason = "rate_limit"
)

// Decision is the guard verdict for one request.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// RequestInfo is the request projection the guard evaluates. Handlers never
// hand the raw request to the guard.
type RequestInfo struct {
	IP        string
	Method    string
	Path      string
	RawQuery  string
	UserAgent string
}

// GuardPolicy fixes the sliding-window interval and the per-role quotas.
type GuardPolicy struct {
	Interval time.Duration
	Limits   map[string]int
}

// DefaultGuardPolicy matches the stock quotas: 20/min admin, 10/min user,
// 5/min guest over a sliding one-minute window.
func DefaultGuardPolicy() GuardPolicy {
	return GuardPolicy{
		Interval: time.Minute,
		Limits: map[string]int{
			RoleAdmin: 20,
			RoleUser:  10,
			RoleGuest: 5,
		},
	}
}

// LoadGuardPolicy reads quota overrides from a YAML file:
//
//	interval: 1m
//	limits:
//	  admin: 20
//	  user: 10
//	  guest: 5
//
// Missing keys keep their defaults. An empty path returns the defaults.
func LoadGuardPolicy(path string) (GuardPolicy, error) {
	policy := DefaultGuardPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read guard policy %s: %w", path, err)
	}

	var raw struct {
		Interval string         `yaml:"interval"`
		Limits   map[string]int `yaml:"limits"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return policy, fmt.Errorf("parse guard policy %s: %w", path, err)
	}

	if raw.Interval != "" {
		d, err := time.ParseDuration(raw.Interval)
		if err != nil || d <= 0 {
			return policy, fmt.Errorf("invalid guard interval %q", raw.Interval)
		}
		policy.Interval = d
	}
	for role, limit := range raw.Limits {
		if limit <= 0 {
			return policy, fmt.Errorf("invalid guard limit %d for role %q", limit, role)
		}
		policy.Limits[strings.ToLower(role)] = limit
	}
	return policy, nil
}

// Guard evaluates requests before handlers run: bot detection, a shield
// against obviously malicious payloads, and a role-derived sliding-window
// rate limit backed by Redis.
type Guard struct {
	redis  *redis.Client
	policy GuardPolicy
	logger *slog.Logger
}

func NewGuard(client *redis.Client, policy GuardPolicy, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{redis: client, policy: policy, logger: logger}
}

// guardSeq disambiguates window members landing on the same clock tick.
var guardSeq atomic.Uint64

// windowMember names one request inside the sorted set. The sequence suffix
// keeps concurrent same-tick requests from collapsing into one ZADD member.
func windowMember(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(guardSeq.Add(1), 10)
}

// slidingWindowScript trims entries older than the window, records the
// current request and returns the count inside the window, atomically.
// KEYS[1] counter key; ARGV: window start (ms), now (ms), member, ttl (ms).
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return redis.call('ZCARD', KEYS[1])
`)

// Evaluate returns the verdict for one request given the caller's role.
// A returned error means the guard itself failed (Redis unavailable) and the
// caller should answer 500, not 403.
func (g *Guard) Evaluate(ctx context.Context, req RequestInfo, role string) (Decision, error) {
	role = normalizeRole(role)

	if looksLikeBot(req.UserAgent) {
		g.logger.Warn("bot detected",
			"ip", req.IP, "role", role, "user_agent", req.UserAgent, "path", req.Path)
		return Decision{Reason: DenyBot}, nil
	}

	if looksMalicious(req) {
		g.logger.Warn("shield blocked request",
			"ip", req.IP, "role", role, "user_agent", req.UserAgent, "path", req.Path, "method", req.Method)
		return Decision{Reason: DenyShield}, nil
	}

	limit := g.policy.Limits[role]
	if limit <= 0 {
		limit = g.policy.Limits[RoleGuest]
	}

	now := time.Now()
	key := "guard:rl:" + role + ":" + req.IP
	count, err := slidingWindowScript.Run(ctx, g.redis, []string{key},
		now.Add(-g.policy.Interval).UnixMilli(),
		now.UnixMilli(),
		windowMember(now),
		g.policy.Interval.Milliseconds(),
	).Int64()
	if err != nil {
		return Decision{}, fmt.Errorf("guard rate check: %w", err)
	}

	if count > int64(limit) {
		g.logger.Warn("rate limit exceeded",
			"ip", req.IP, "role", role, "user_agent", req.UserAgent, "path", req.Path, "limit", limit)
		return Decision{Reason: DenyRateLimit}, nil
	}

	return Decision{Allowed: true}, nil
}

func normalizeRole(role string) string {
	switch role {
	case RoleAdmin, RoleUser:
		return role
	default:
		return RoleGuest
	}
}

// Signatures of automated clients. An empty User-Agent counts as a bot.
var botSignatures = []string{"bot", "crawl", "spider", "scrape", "headless", "python-requests"}

func looksLikeBot(userAgent string) bool {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return true
	}
	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}

// Payload patterns the shield rejects outright.
var shieldSignatures = []string{"../", "<script", "union select", "union+select", "etc/passwd"}

func looksMalicious(req RequestInfo) bool {
	probe := strings.ToLower(req.Path + "?" + req.RawQuery)
	for _, sig := range shieldSignatures {
		if strings.Contains(probe, sig) {
			return true
		}
	}
	return false
}
