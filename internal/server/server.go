package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orsayn/site-api/internal/config"
	contactapp "github.com/orsayn/site-api/internal/contact/application"
	"github.com/orsayn/site-api/internal/infrastructure/content"
	mongodoc "github.com/orsayn/site-api/internal/infrastructure/mongo"
	"github.com/orsayn/site-api/internal/infrastructure/notion"
	redisstats "github.com/orsayn/site-api/internal/infrastructure/redis"
	"github.com/orsayn/site-api/internal/infrastructure/resend"
	commonhttp "github.com/orsayn/site-api/internal/interfaces/http/common"
	contacthttp "github.com/orsayn/site-api/internal/interfaces/http/contact"
	journalhttp "github.com/orsayn/site-api/internal/interfaces/http/journal"
	journalapp "github.com/orsayn/site-api/internal/journal/application"
)

// pinger is any backend the health check can probe.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server は HTTP サーバーのライフサイクルを管理し、各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *log.Logger
	addr           string
	allowedOrigins []string
	mongoClient    *mongo.Client
	redisClient    *goredis.Client
	health         map[string]pinger
	contact        *contacthttp.Handler
	journal        *journalhttp.Handler
}

// New は Config と任意の Mongo / Redis クライアントを受け取り、アプリケーションサービスとハンドラを組み立てる。
// mongoClient is required only for the mongo record store; redisClient may be nil.
func New(cfg config.Config, mongoClient *mongo.Client, redisClient *goredis.Client) (*Server, error) {
	srv := &Server{
		logger:         cfg.ServerLog,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		mongoClient:    mongoClient,
		redisClient:    redisClient,
		health:         make(map[string]pinger),
	}

	articles, err := content.NewArticleRepository()
	if err != nil {
		return nil, fmt.Errorf("load journal content: %w", err)
	}
	srv.journal = journalhttp.NewHandler(journalhttp.Config{
		Logger:   cfg.ServerLog,
		Articles: journalapp.NewArticleQueryService(articles),
		BaseURL:  cfg.SiteBaseURL,
	})

	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	pipelineCfg := contactapp.PipelineConfig{
		Logger: cfg.ServerLog,
		Gate: contactapp.NewGate(contactapp.GateConfig{
			MaxRequests: cfg.GateMaxRequests,
			Window:      cfg.GateWindow,
			MaxClients:  cfg.GateMaxClients,
			GlobalRPS:   cfg.GateGlobalRPS,
			GlobalBurst: cfg.GateGlobalBurst,
		}),
		Mailer: resend.NewMailer(resend.Config{
			APIKey:     cfg.ResendAPIKey,
			Endpoint:   cfg.ResendEndpoint,
			HTTPClient: httpClient,
		}),
		Mail:            contactapp.MailSettings{From: cfg.ContactFrom, To: cfg.ContactTo},
		UpstreamTimeout: cfg.UpstreamTimeout,
	}

	switch cfg.RecordStore {
	case config.RecordStoreMongo:
		if mongoClient == nil {
			return nil, errors.New("mongo record store selected without a mongo client")
		}
		submissions := mongodoc.NewSubmissionRepository(mongoClient, cfg.MongoDatabase, cfg.SubmissionCollection)
		pipelineCfg.Records = submissions
		pipelineCfg.Failures = mongodoc.NewFailedNotificationRepository(mongoClient, cfg.MongoDatabase, cfg.FailedNotificationCollection)
		srv.health["mongo"] = submissions
	default:
		pipelineCfg.Records = notion.NewClient(notion.Config{
			APIKey:     cfg.NotionAPIKey,
			DatabaseID: cfg.NotionDatabaseID,
			Endpoint:   cfg.NotionEndpoint,
			Version:    cfg.NotionVersion,
			HTTPClient: httpClient,
		})
	}

	if redisClient != nil {
		stats := redisstats.NewGateStatsStore(redisClient, redisstats.WithPrefix(cfg.GateStatsPrefix))
		pipelineCfg.Observer = stats
		srv.health["redis"] = stats
	}

	srv.contact = contacthttp.NewHandler(contacthttp.Config{
		Logger:            cfg.ServerLog,
		Submitter:         contactapp.NewPipeline(pipelineCfg),
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})
	return srv, nil
}

// Router はミドルウェアとルーティングを組み立てる。RealIP is not used: the
// contact handler derives client ids itself according to the proxy setting.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	s.contact.Register(router)
	s.journal.Register(router)
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteError(s.logger, w, http.StatusNotFound, commonhttp.MessageNotFound)
	})
	return router
}

// Run はHTTPサーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	_, ok := allowed[origin]
	return ok
}

// healthHandler は設定済みバックエンドへの疎通確認を行う。
// The record store and email provider are external APIs and are not probed.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failures := make(map[string]string)
		for name, p := range s.health {
			if err := p.Ping(ctx); err != nil {
				failures[name] = err.Error()
			}
		}
		if len(failures) > 0 {
			s.logger.Printf("ヘルスチェック失敗: %v", failures)
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"errors": failures,
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// shutdown は外部クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if s.mongoClient != nil {
		if err := s.mongoClient.Disconnect(shutdownCtx); err != nil {
			s.logger.Printf("MongoDB 切断時にエラー: %v", err)
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Printf("Redis 切断時にエラー: %v", err)
		}
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("サーバーが異常終了: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
