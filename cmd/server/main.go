// Package main Web Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"articles-cms/internal/config"
	"articles-cms/internal/mailer"
	cacheredis "articles-cms/internal/shared/cache/redis"
	"articles-cms/internal/shared/objstore"
	"articles-cms/internal/shared/storage/mongostore"
	"articles-cms/internal/webserver/article"
	"articles-cms/internal/webserver/auth"
	"articles-cms/internal/webserver/server"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML 配置）
	cfg := config.Load()

	log.Printf("Starting Web Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.Secret == "" {
		log.Fatal("SECRET is required (JWT signing key)")
	}

	// 初始化 MongoDB（用户与文章）
	store, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化 Redis 登录限流（可选，连不上时降级为不限流）
	var throttle auth.Throttle
	if cfg.RedisURL != "" {
		redisStore, err := cacheredis.NewStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Redis unavailable, login throttling disabled: %v", err)
		} else {
			defer redisStore.Close()
			throttle = redisStore
			log.Println("Connected to Redis")
		}
	}

	// 初始化 MinIO 附件存储（可选，未配置时附件接口返回 503）
	var objects article.ObjectStore
	if cfg.MinIO.Endpoint != "" {
		client, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.Printf("WARNING: MinIO unavailable, attachments disabled: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = client.EnsureBucket(ctx)
			cancel()
			if err != nil {
				log.Printf("WARNING: MinIO bucket check failed, attachments disabled: %v", err)
			} else {
				objects = client
				log.Println("Connected to MinIO")
			}
		}
	}

	// 确保管理员账号存在
	if err := auth.EnsureAdminUser(store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	h := server.NewHandler(cfg, store, mailer.New(cfg.SMTP), throttle, objects)
	router, err := h.Router()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
