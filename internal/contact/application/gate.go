package application

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UnknownClient is the client id used when no address can be derived.
const UnknownClient = "unknown"

// RejectReason explains why the gate refused a request.
type RejectReason string

const (
	ReasonNone      RejectReason = ""
	ReasonClient    RejectReason = "client_window"
	ReasonSaturated RejectReason = "global_ceiling"
)

// Decision is the gate's answer for one request.
type Decision struct {
	Allowed bool
	Reason  RejectReason
	// RetryAfter is when the client may expect to be admitted again.
	RetryAfter time.Duration
}

// GateConfig tunes the gate. Zero values fall back to the defaults.
type GateConfig struct {
	MaxRequests int
	Window      time.Duration
	MaxClients  int
	// GlobalRPS and GlobalBurst configure a process-wide token bucket checked
	// after the per-client window. GlobalRPS <= 0 disables it.
	GlobalRPS   float64
	GlobalBurst int
	Now         func() time.Time
}

const (
	DefaultGateMaxRequests = 3
	DefaultGateWindow      = time.Minute
	DefaultGateMaxClients  = 1000
)

// Gate is an in-memory sliding-window rate limiter keyed by client address.
// State is process local and resets on restart; nothing is shared between
// instances.
type Gate struct {
	mu          sync.Mutex
	clients     map[string][]time.Time
	order       []string
	maxRequests int
	window      time.Duration
	maxClients  int
	global      *rate.Limiter
	now         func() time.Time
}

// NewGate builds a gate from cfg.
func NewGate(cfg GateConfig) *Gate {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultGateMaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultGateWindow
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultGateMaxClients
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	g := &Gate{
		clients:     make(map[string][]time.Time),
		maxRequests: cfg.MaxRequests,
		window:      cfg.Window,
		maxClients:  cfg.MaxClients,
		now:         cfg.Now,
	}
	if cfg.GlobalRPS > 0 {
		burst := cfg.GlobalBurst
		if burst <= 0 {
			burst = 1
		}
		g.global = rate.NewLimiter(rate.Limit(cfg.GlobalRPS), burst)
	}
	return g
}

// Admit reports whether clientID may submit now and records the attempt when
// it may.
func (g *Gate) Admit(clientID string) bool {
	return g.Decide(clientID).Allowed
}

// Decide prunes clientID's timestamps older than the window, rejects when the
// remaining count reaches the maximum and otherwise records the current time.
// The check and the write happen under one lock, so concurrent requests from
// the same client cannot both slip past the limit.
func (g *Gate) Decide(clientID string) Decision {
	if clientID == "" {
		clientID = UnknownClient
	}
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	stamps, tracked := g.clients[clientID]
	recent := pruneBefore(stamps, now.Add(-g.window))
	if tracked {
		g.clients[clientID] = recent
	}

	if len(recent) >= g.maxRequests {
		return Decision{
			Allowed:    false,
			Reason:     ReasonClient,
			RetryAfter: recent[0].Add(g.window).Sub(now),
		}
	}

	if g.global != nil && !g.global.AllowN(now, 1) {
		return Decision{Allowed: false, Reason: ReasonSaturated, RetryAfter: time.Second}
	}

	if !tracked {
		if len(g.clients) >= g.maxClients {
			g.evictOldest()
		}
		g.order = append(g.order, clientID)
	}
	g.clients[clientID] = append(recent, now)

	return Decision{Allowed: true}
}

// Tracked returns the number of distinct clients currently held.
func (g *Gate) Tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

// evictOldest drops the first-inserted client. This is a memory bound, not an
// LRU: recent activity does not move a client forward.
func (g *Gate) evictOldest() {
	if len(g.order) == 0 {
		return
	}
	oldest := g.order[0]
	g.order[0] = ""
	g.order = g.order[1:]
	delete(g.clients, oldest)
}

// pruneBefore keeps the timestamps strictly newer than cutoff. Timestamps
// are stored in arrival order so the kept ones form a suffix.
func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	for i, ts := range stamps {
		if ts.After(cutoff) {
			return stamps[i:]
		}
	}
	return stamps[:0]
}
