package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"science-chat/internal/config"
	"science-chat/internal/db"
	apihttp "science-chat/internal/http"
	"science-chat/internal/llm"
	"science-chat/internal/repository"
	"science-chat/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	llmClient, err := llm.New(llm.Options{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Timeout:  cfg.LLMTimeout(),
		Generation: llm.GenerationConfig{
			Temperature:     cfg.LLMTemperature,
			TopK:            cfg.LLMTopK,
			TopP:            cfg.LLMTopP,
			MaxOutputTokens: cfg.LLMMaxTokens,
		},
	}, logger)
	if err != nil {
		logger.Fatal("llm client", zap.Error(err))
	}

	var limiter service.PromptLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisPromptLimiter(redisClient, cfg.ChatRateWindow(), cfg.ChatRateLimit, logger)
		}
		cancel()
	}
	if limiter == nil {
		limiter = service.NewPromptLimiter(cfg.ChatRateWindow(), cfg.ChatRateLimit)
	}

	userRepo := repository.NewPgUserRepository(pool)
	fileRepo := repository.NewPgFileRepository(pool)
	chatSvc := service.NewChatService(logger, userRepo, llmClient, limiter, service.DefaultPreamble())
	fileSvc := service.NewFileService(logger, fileRepo, cfg.UploadDir, service.DefaultExtractors())

	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	uploadHandler := apihttp.NewUploadHandler(logger, fileSvc, cfg.UploadMaxBytes)
	router := apihttp.NewRouter(logger, chatHandler, uploadHandler, apihttp.RouterOptions{
		StaticDir:     cfg.StaticDir,
		AllowedOrigin: cfg.CORSAllowedOrigin,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
