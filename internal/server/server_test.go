package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orsayn/site-api/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Addr:              ":0",
		AllowedOrigins:    []string{"https://orsayn.com"},
		SiteBaseURL:       "https://orsayn.com",
		TrustProxyHeaders: true,
		GateMaxRequests:   3,
		GateWindow:        time.Minute,
		GateMaxClients:    1000,
		ContactFrom:       "Orsayn <contact@orsayn.fr>",
		ContactTo:         []string{"contact@orsayn.fr"},
		RecordStore:       config.RecordStoreNotion,
		UpstreamTimeout:   time.Second,
		ServerLog:         log.New(io.Discard, "", 0),
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := New(testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)
	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestRouter_ContactWithoutSecretsIsDegraded(t *testing.T) {
	ts := newTestServer(t)
	body := `{"name":"Jean Dupont","company":"Acme SA","email":"jean@acme.fr","ambition":"Fondation","agreement":true}`
	res, err := http.Post(ts.URL+"/api/contact", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(raw), "CRM temporairement indisponible") {
		t.Fatalf("status = %d body = %s", res.StatusCode, raw)
	}
}

func TestRouter_RoutesAndFallbacks(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/contact", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/journal", http.StatusOK},
		{http.MethodGet, "/sitemap.xml", http.StatusOK},
		{http.MethodGet, "/robots.txt", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		res.Body.Close()
		if res.StatusCode != tt.status {
			t.Fatalf("%s %s: status = %d, want %d", tt.method, tt.path, res.StatusCode, tt.status)
		}
	}
}

func TestWithCORS(t *testing.T) {
	h := withCORS([]string{"https://orsayn.com"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "https://orsayn.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://orsayn.com" {
		t.Fatalf("preflight: status = %d headers = %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin: status = %d headers = %v", rec.Code, rec.Header())
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_Degraded(t *testing.T) {
	srv, err := New(testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.health["mongo"] = failingPinger{}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "degraded") {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestNew_MongoStoreRequiresClient(t *testing.T) {
	cfg := testConfig()
	cfg.RecordStore = config.RecordStoreMongo
	if _, err := New(cfg, nil, nil); err == nil {
		t.Fatalf("expected error without a mongo client")
	}
}

func TestRouter_DefaultConfigAdmitsFirstTimeClients(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.ServerLog = log.New(io.Discard, "", 0)
	srv, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	router := srv.Router()

	body := `{"name":"Jean Dupont","company":"Acme SA","email":"jean@acme.fr","ambition":"Fondation","agreement":true}`
	for i := 0; i < 30; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("client %d: status = %d body = %s", i+1, rec.Code, rec.Body.String())
		}
	}
}
