package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Record store backends selectable with RECORD_STORE.
const (
	RecordStoreNotion = "notion"
	RecordStoreMongo  = "mongo"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                         string
	AllowedOrigins               []string
	SiteBaseURL                  string
	TrustProxyHeaders            bool
	GateMaxRequests              int
	GateWindow                   time.Duration
	GateMaxClients               int
	GateGlobalRPS                float64
	GateGlobalBurst              int
	ResendAPIKey                 string
	ResendEndpoint               string
	ContactFrom                  string
	ContactTo                    []string
	RecordStore                  string
	NotionAPIKey                 string
	NotionDatabaseID             string
	NotionEndpoint               string
	NotionVersion                string
	MongoURI                     string
	MongoDatabase                string
	SubmissionCollection         string
	FailedNotificationCollection string
	Timeout                      time.Duration
	UpstreamTimeout              time.Duration
	RedisAddr                    string
	RedisPassword                string
	RedisDB                      int
	GateStatsPrefix              string
	ServerLog                    *log.Logger
}

// rawEnv mirrors the environment variables.
type rawEnv struct {
	Addr                         string        `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins               []string      `env:"API_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	SiteBaseURL                  string        `env:"SITE_BASE_URL" envDefault:"https://orsayn.com"`
	TrustProxyHeaders            bool          `env:"TRUST_PROXY_HEADERS" envDefault:"true"`
	GateMaxRequests              int           `env:"GATE_MAX_REQUESTS" envDefault:"3"`
	GateWindow                   time.Duration `env:"GATE_WINDOW" envDefault:"60s"`
	GateMaxClients               int           `env:"GATE_MAX_CLIENTS" envDefault:"1000"`
	GateGlobalRPS                float64       `env:"GATE_GLOBAL_RPS" envDefault:"0"`
	GateGlobalBurst              int           `env:"GATE_GLOBAL_BURST" envDefault:"20"`
	ResendAPIKey                 string        `env:"RESEND_API_KEY"`
	ResendEndpoint               string        `env:"RESEND_ENDPOINT" envDefault:"https://api.resend.com"`
	ContactFrom                  string        `env:"CONTACT_FROM" envDefault:"Orsayn <contact@orsayn.fr>"`
	ContactTo                    []string      `env:"CONTACT_TO" envDefault:"contact@orsayn.fr" envSeparator:","`
	RecordStore                  string        `env:"RECORD_STORE" envDefault:"notion"`
	NotionAPIKey                 string        `env:"NOTION_API_KEY"`
	NotionDatabaseID             string        `env:"NOTION_DATABASE_ID"`
	NotionEndpoint               string        `env:"NOTION_ENDPOINT" envDefault:"https://api.notion.com"`
	NotionVersion                string        `env:"NOTION_VERSION" envDefault:"2022-06-28"`
	MongoURI                     string        `env:"MONGO_URI" envDefault:"mongodb://mongo:27017"`
	MongoDatabase                string        `env:"MONGO_DB" envDefault:"orsayn"`
	SubmissionCollection         string        `env:"SUBMISSION_COLLECTION" envDefault:"submissions"`
	FailedNotificationCollection string        `env:"FAILED_NOTIFICATION_COLLECTION" envDefault:"failed_notifications"`
	MongoConnectTimeout          time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	UpstreamTimeout              time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"5s"`
	RedisAddr                    string        `env:"REDIS_ADDR"`
	RedisPassword                string        `env:"REDIS_PASSWORD"`
	RedisDB                      int           `env:"REDIS_DB" envDefault:"0"`
	GateStatsPrefix              string        `env:"GATE_STATS_PREFIX" envDefault:"contact:gate"`
}

// Load reads environment variables and returns a fully populated Config.
// Missing secrets are not an error: each adapter reports them when used.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses environment instead of the process environment when it is
// non-nil.
func LoadFrom(environment map[string]string) (Config, error) {
	var raw rawEnv
	if err := env.ParseWithOptions(&raw, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		Addr:                         strings.TrimSpace(raw.Addr),
		AllowedOrigins:               trimList(raw.AllowedOrigins, []string{"*"}),
		SiteBaseURL:                  strings.TrimRight(strings.TrimSpace(raw.SiteBaseURL), "/"),
		TrustProxyHeaders:            raw.TrustProxyHeaders,
		GateMaxRequests:              raw.GateMaxRequests,
		GateWindow:                   raw.GateWindow,
		GateMaxClients:               raw.GateMaxClients,
		GateGlobalRPS:                raw.GateGlobalRPS,
		GateGlobalBurst:              raw.GateGlobalBurst,
		ResendAPIKey:                 strings.TrimSpace(raw.ResendAPIKey),
		ResendEndpoint:               strings.TrimSpace(raw.ResendEndpoint),
		ContactFrom:                  strings.TrimSpace(raw.ContactFrom),
		ContactTo:                    trimList(raw.ContactTo, nil),
		RecordStore:                  strings.ToLower(strings.TrimSpace(raw.RecordStore)),
		NotionAPIKey:                 strings.TrimSpace(raw.NotionAPIKey),
		NotionDatabaseID:             strings.TrimSpace(raw.NotionDatabaseID),
		NotionEndpoint:               strings.TrimSpace(raw.NotionEndpoint),
		NotionVersion:                strings.TrimSpace(raw.NotionVersion),
		MongoURI:                     strings.TrimSpace(raw.MongoURI),
		MongoDatabase:                strings.TrimSpace(raw.MongoDatabase),
		SubmissionCollection:         strings.TrimSpace(raw.SubmissionCollection),
		FailedNotificationCollection: strings.TrimSpace(raw.FailedNotificationCollection),
		Timeout:                      raw.MongoConnectTimeout,
		UpstreamTimeout:              raw.UpstreamTimeout,
		RedisAddr:                    strings.TrimSpace(raw.RedisAddr),
		RedisPassword:                raw.RedisPassword,
		RedisDB:                      raw.RedisDB,
		GateStatsPrefix:              strings.TrimSpace(raw.GateStatsPrefix),
		ServerLog:                    log.New(os.Stdout, "[orsayn-api] ", log.LstdFlags|log.Lshortfile),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	cfg.ServerLog.Printf("loaded config: addr=%q recordStore=%s resend=%t notion=%t redis=%t trustProxy=%t",
		cfg.Addr, cfg.RecordStore, cfg.ResendAPIKey != "", cfg.NotionAPIKey != "" && cfg.NotionDatabaseID != "", cfg.RedisAddr != "", cfg.TrustProxyHeaders)

	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.RecordStore != RecordStoreNotion && c.RecordStore != RecordStoreMongo {
		errs = append(errs, fmt.Errorf("RECORD_STORE must be %q or %q, got %q", RecordStoreNotion, RecordStoreMongo, c.RecordStore))
	}
	if c.GateMaxRequests < 1 {
		errs = append(errs, errors.New("GATE_MAX_REQUESTS must be at least 1"))
	}
	if c.GateWindow <= 0 {
		errs = append(errs, errors.New("GATE_WINDOW must be positive"))
	}
	if c.GateMaxClients < 1 {
		errs = append(errs, errors.New("GATE_MAX_CLIENTS must be at least 1"))
	}
	if c.GateGlobalRPS < 0 || c.GateGlobalBurst < 0 {
		errs = append(errs, errors.New("GATE_GLOBAL_RPS and GATE_GLOBAL_BURST must not be negative"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.RecordStore == RecordStoreMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required when RECORD_STORE=mongo"))
	}
	return errors.Join(errs...)
}

// UsesMongo reports whether a Mongo connection is needed.
func (c Config) UsesMongo() bool {
	return c.RecordStore == RecordStoreMongo
}

func trimList(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
