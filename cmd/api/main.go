package main

import (
	"context"
	"log"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orsayn/site-api/internal/config"
	"github.com/orsayn/site-api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	var mongoClient *mongo.Client
	if cfg.UsesMongo() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		mongoClient, err = mongo.Connect(ctx, clientOptions)
		if err != nil {
			cfg.ServerLog.Fatalf("MongoDB 接続に失敗しました: %v", err)
		}
	}

	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cfg.ServerLog.Printf("Redis に接続できません。ゲート統計は記録されない可能性があります: %v", err)
		}
		cancel()
	}

	app, err := server.New(cfg, mongoClient, redisClient)
	if err != nil {
		cfg.ServerLog.Fatalf("サーバー初期化に失敗: %v", err)
	}
	if err := app.Run(); err != nil {
		cfg.ServerLog.Fatalf("サーバー起動に失敗: %v", err)
	}
}
