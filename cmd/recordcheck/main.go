package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orsayn/site-api/internal/config"
	"github.com/orsayn/site-api/internal/contact/domain"
	mongodoc "github.com/orsayn/site-api/internal/infrastructure/mongo"
	"github.com/orsayn/site-api/internal/infrastructure/notion"
	redisstats "github.com/orsayn/site-api/internal/infrastructure/redis"
)

type checkOptions struct {
	envFile       string
	timeout       time.Duration
	createTest    bool
	ensureIndexes bool
}

func main() {
	opts := parseFlags()

	if opts.envFile != "" {
		if err := loadEnvFile(opts.envFile); err != nil {
			log.Fatalf("環境変数の読み込みに失敗しました: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	switch cfg.RecordStore {
	case config.RecordStoreMongo:
		err = checkMongo(ctx, cfg, opts)
	default:
		err = checkNotion(ctx, cfg, opts)
	}
	if err != nil {
		log.Printf("FAIL: %v", err)
		os.Exit(1)
	}
	log.Printf("OK: record store %s is reachable and configured", cfg.RecordStore)

	if cfg.RedisAddr != "" {
		reportGateStats(ctx, cfg)
	}
}

// reportGateStats prints the cumulative gate counters. Redis is optional, so
// failures are warnings.
func reportGateStats(ctx context.Context, cfg config.Config) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	stats := redisstats.NewGateStatsStore(client, redisstats.WithPrefix(cfg.GateStatsPrefix))
	if err := stats.Ping(ctx); err != nil {
		log.Printf("WARN: Redis に接続できません: %v", err)
		return
	}
	totals, err := stats.Totals(ctx)
	if err != nil {
		log.Printf("WARN: gate stats: %v", err)
		return
	}
	log.Printf("gate stats: %s", formatTotals(totals))
}

func formatTotals(totals map[string]int64) string {
	if len(totals) == 0 {
		return "no decisions recorded"
	}
	fields := make([]string, 0, len(totals))
	for field := range totals {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s=%d", field, totals[field]))
	}
	return strings.Join(parts, " ")
}

func parseFlags() checkOptions {
	var opts checkOptions
	flag.StringVar(&opts.envFile, "env-file", "", "読み込む env ファイル (例: .env.local)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "全体のタイムアウト")
	flag.BoolVar(&opts.createTest, "create-test", false, "テストレコードを1件作成する (作成後は手動で削除)")
	flag.BoolVar(&opts.ensureIndexes, "ensure-indexes", false, "mongo: submissions のインデックスを作成する")
	flag.Parse()

	if opts.timeout <= 0 {
		log.Fatal("timeout は正の値を指定してください")
	}
	return opts
}

func testRecord() domain.Record {
	return domain.Record{
		Reference:   "recordcheck-" + uuid.NewString(),
		Name:        "Test recordcheck - À SUPPRIMER",
		Company:     "Test Structure",
		Email:       "test@orsayn.fr",
		Ambition:    domain.AmbitionFoundation,
		Context:     "Enregistrement de test créé par recordcheck",
		SubmittedAt: time.Now().UTC(),
		Status:      domain.RecordStatusNew,
	}
}

func checkNotion(ctx context.Context, cfg config.Config, opts checkOptions) error {
	client := notion.NewClient(notion.Config{
		APIKey:     cfg.NotionAPIKey,
		DatabaseID: cfg.NotionDatabaseID,
		Endpoint:   cfg.NotionEndpoint,
		Version:    cfg.NotionVersion,
	})
	if !client.Configured() {
		return fmt.Errorf("NOTION_API_KEY and NOTION_DATABASE_ID must be set: %w", domain.ErrConfigMissing)
	}

	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("integration check: %w", err)
	}
	log.Printf("integration: %s (%s, id=%s)", me.Name, me.Type, me.ID)

	db, err := client.Database(ctx)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) && upstream.Code == "object_not_found" {
			return fmt.Errorf("database %s is not shared with the integration: %w", cfg.NotionDatabaseID, err)
		}
		return fmt.Errorf("database check: %w", err)
	}
	log.Printf("database: %q (id=%s)", db.Title, db.ID)
	for name, kind := range db.Properties {
		log.Printf("  property %-12s %s", name, kind)
	}

	if missing := db.Missing(); len(missing) > 0 {
		return fmt.Errorf("database is missing properties: %s", strings.Join(missing, ", "))
	}
	if gaps := db.MissingOptions(notion.PropertyAmbition, domain.AllowedAmbitions); len(gaps) > 0 {
		log.Printf("WARN: Ambition options absent from the database: %s", strings.Join(gaps, ", "))
	}
	if gaps := db.MissingOptions(notion.PropertyStatus, []string{domain.RecordStatusNew}); len(gaps) > 0 {
		log.Printf("WARN: Statut options absent from the database: %s", strings.Join(gaps, ", "))
	}

	if opts.createTest {
		id, err := client.Create(ctx, testRecord())
		if err != nil {
			return fmt.Errorf("create test page: %w", err)
		}
		log.Printf("test page created: %s (delete it manually)", id)
	}
	return nil
}

func checkMongo(ctx context.Context, cfg config.Config, opts checkOptions) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("MongoDB 接続に失敗しました: %w", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	repo := mongodoc.NewSubmissionRepository(client, cfg.MongoDatabase, cfg.SubmissionCollection)
	if err := repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	if opts.ensureIndexes {
		names, err := repo.EnsureIndexes(ctx)
		if err != nil {
			return err
		}
		log.Printf("indexes: %s", strings.Join(names, ", "))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	log.Printf("Mongo: %s / %s.%s (%d documents)", redactURI(cfg.MongoURI), cfg.MongoDatabase, cfg.SubmissionCollection, count)

	if opts.createTest {
		id, err := repo.Create(ctx, testRecord())
		if err != nil {
			return fmt.Errorf("create test document: %w", err)
		}
		log.Printf("test document created: %s (delete it manually)", id)
	}
	return nil
}

// redactURI drops credentials from a connection string before logging it.
func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
