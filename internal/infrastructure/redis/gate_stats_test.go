package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orsayn/site-api/internal/contact/application"
)

// fakeRedis captures the commands issued through pipelines. Only the methods
// the store uses are implemented.
type fakeRedis struct {
	redis.Cmdable
	cmds    []string
	execs   int
	execErr error
	totals  map[string]string
}

func (f *fakeRedis) Pipeline() redis.Pipeliner {
	return &fakePipeline{owner: f}
}

func (f *fakeRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	f.cmds = append(f.cmds, "HGETALL "+key)
	return redis.NewMapStringStringResult(f.totals, nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

type fakePipeline struct {
	redis.Pipeliner
	owner  *fakeRedis
	queued []string
}

func (p *fakePipeline) HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd {
	p.queued = append(p.queued, fmt.Sprintf("HINCRBY %s %s %d", key, field, incr))
	return redis.NewIntCmd(ctx)
}

func (p *fakePipeline) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	p.queued = append(p.queued, fmt.Sprintf("EXPIRE %s %s", key, expiration))
	return redis.NewBoolCmd(ctx)
}

func (p *fakePipeline) Exec(context.Context) ([]redis.Cmder, error) {
	p.owner.execs++
	if p.owner.execErr != nil {
		return nil, p.owner.execErr
	}
	p.owner.cmds = append(p.owner.cmds, p.queued...)
	return nil, nil
}

func TestDecisionField(t *testing.T) {
	tests := []struct {
		ev   application.GateEvent
		want string
	}{
		{application.GateEvent{Allowed: true}, "allowed"},
		{application.GateEvent{Reason: application.ReasonClient}, "denied:client_window"},
		{application.GateEvent{Reason: application.ReasonSaturated}, "denied:global_ceiling"},
		{application.GateEvent{}, "denied"},
	}
	for _, tt := range tests {
		if got := decisionField(tt.ev); got != tt.want {
			t.Fatalf("decisionField(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestKeys(t *testing.T) {
	s := NewGateStatsStore(nil, WithPrefix(":orsayn:gate:"), WithTTL(time.Hour))
	if s.totalKey() != "orsayn:gate:total" {
		t.Fatalf("total key = %q", s.totalKey())
	}
	at := time.Date(2026, 10, 14, 11, 5, 30, 0, time.FixedZone("CEST", 2*3600))
	if got := s.minuteKey(at); got != "orsayn:gate:minute:202610140905" {
		t.Fatalf("minute key = %q", got)
	}
	if s.ttl != time.Hour {
		t.Fatalf("ttl = %s", s.ttl)
	}
}

func TestWithPrefixIgnoresEmpty(t *testing.T) {
	s := NewGateStatsStore(nil, WithPrefix("  "))
	if s.prefix != DefaultPrefix {
		t.Fatalf("prefix = %q", s.prefix)
	}
}

func TestRouteField(t *testing.T) {
	ev := application.GateEvent{Method: "POST", Path: "/api/contact"}
	if got := routeField(ev, "allowed"); got != "POST /api/contact:allowed" {
		t.Fatalf("routeField = %q", got)
	}
	if got := routeField(application.GateEvent{}, "allowed"); got != "" {
		t.Fatalf("empty route produced %q", got)
	}
}

func TestRecordWithoutClient(t *testing.T) {
	var s *GateStatsStore
	if err := s.Record(context.Background(), application.GateEvent{Allowed: true}); err != nil {
		t.Fatalf("nil store must be a no-op: %v", err)
	}
	if err := NewGateStatsStore(nil).Record(context.Background(), application.GateEvent{}); err != nil {
		t.Fatalf("store without client must be a no-op: %v", err)
	}
}

func TestRecord_PipelinesCounters(t *testing.T) {
	rdb := &fakeRedis{}
	s := NewGateStatsStore(rdb)
	ev := application.GateEvent{
		ClientID: "203.0.113.7",
		Allowed:  true,
		Method:   "POST",
		Path:     "/api/contact",
		At:       time.Date(2026, 10, 14, 9, 30, 15, 0, time.UTC),
	}

	if err := s.Record(context.Background(), ev); err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := []string{
		"HINCRBY contact:gate:total allowed 1",
		"HINCRBY contact:gate:minute:202610140930 allowed 1",
		"EXPIRE contact:gate:minute:202610140930 24h0m0s",
		"HINCRBY contact:gate:route POST /api/contact:allowed 1",
	}
	if got := strings.Join(rdb.cmds, "\n"); got != strings.Join(want, "\n") {
		t.Fatalf("commands:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
	if rdb.execs != 1 {
		t.Fatalf("execs = %d, want a single round trip", rdb.execs)
	}
	for _, cmd := range rdb.cmds {
		if strings.Contains(cmd, ev.ClientID) {
			t.Fatalf("client id written to redis: %s", cmd)
		}
	}
}

func TestRecord_DeniedWithoutRouteOrTTL(t *testing.T) {
	rdb := &fakeRedis{}
	s := NewGateStatsStore(rdb, WithPrefix("orsayn"), WithTTL(0))
	ev := application.GateEvent{Reason: application.ReasonClient, At: time.Date(2026, 10, 14, 9, 31, 0, 0, time.UTC)}

	if err := s.Record(context.Background(), ev); err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := []string{
		"HINCRBY orsayn:total denied:client_window 1",
		"HINCRBY orsayn:minute:202610140931 denied:client_window 1",
	}
	if got := strings.Join(rdb.cmds, "\n"); got != strings.Join(want, "\n") {
		t.Fatalf("commands:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
}

func TestRecord_ReturnsExecError(t *testing.T) {
	rdb := &fakeRedis{execErr: errors.New("i/o timeout")}
	err := NewGateStatsStore(rdb).Record(context.Background(), application.GateEvent{Allowed: true})
	if err == nil || !strings.Contains(err.Error(), "i/o timeout") {
		t.Fatalf("expected exec error, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	rdb := &fakeRedis{totals: map[string]string{"allowed": "12", "denied:client_window": "3"}}
	s := NewGateStatsStore(rdb)

	totals, err := s.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals["allowed"] != 12 || totals["denied:client_window"] != 3 || len(totals) != 2 {
		t.Fatalf("totals = %v", totals)
	}
	if rdb.cmds[0] != "HGETALL contact:gate:total" {
		t.Fatalf("read key = %q", rdb.cmds[0])
	}

	rdb.totals = map[string]string{"allowed": "many"}
	if _, err := s.Totals(context.Background()); err == nil {
		t.Fatalf("expected error for a non-numeric counter")
	}
}
