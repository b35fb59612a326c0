package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orsayn/site-api/internal/contact/application"
)

const (
	DefaultPrefix = "contact:gate"
	defaultTTL    = 24 * time.Hour

	fieldAllowed = "allowed"
)

// GateStatsStore counts gate decisions in Redis hashes. The total hash never
// expires; per-minute buckets expire after the configured TTL. Client ids
// are never written.
type GateStatsStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

type Option func(*GateStatsStore)

func WithPrefix(prefix string) Option {
	return func(s *GateStatsStore) {
		if p := strings.Trim(strings.TrimSpace(prefix), ":"); p != "" {
			s.prefix = p
		}
	}
}

func WithTTL(d time.Duration) Option {
	return func(s *GateStatsStore) { s.ttl = d }
}

// NewGateStatsStore accepts any redis.Cmdable (*redis.Client, ring, cluster).
func NewGateStatsStore(rdb redis.Cmdable, opts ...Option) *GateStatsStore {
	s := &GateStatsStore{rdb: rdb, prefix: DefaultPrefix, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// decisionField names the hash field incremented for ev.
func decisionField(ev application.GateEvent) string {
	if ev.Allowed {
		return fieldAllowed
	}
	if ev.Reason == "" {
		return "denied"
	}
	return "denied:" + string(ev.Reason)
}

func (s *GateStatsStore) totalKey() string {
	return s.prefix + ":total"
}

func (s *GateStatsStore) minuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}

func routeField(ev application.GateEvent, field string) string {
	route := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
	if route == "" {
		return ""
	}
	return route + ":" + field
}

// Record implements application.GateObserver.
func (s *GateStatsStore) Record(ctx context.Context, ev application.GateEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := decisionField(ev)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)

	bucket := s.minuteKey(at)
	pipe.HIncrBy(ctx, bucket, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucket, s.ttl)
	}

	if rf := routeField(ev, field); rf != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", rf, 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Totals returns the cumulative counters keyed by decision field.
func (s *GateStatsStore) Totals(ctx context.Context) (map[string]int64, error) {
	if s == nil || s.rdb == nil {
		return map[string]int64{}, nil
	}
	raw, err := s.rdb.HGetAll(ctx, s.totalKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis: counter %s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

// Ping checks connectivity.
func (s *GateStatsStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
